package httpapi

import (
	"errors"
	"net/http"
	"unicode/utf16"

	"github.com/gin-gonic/gin"
	"github.com/kubex/rclink/audit"
	"github.com/kubex/rclink/roster"
	"go.uber.org/zap"
)

const (
	ctxLineUserID = "lineUserId"

	// LIFF clients count length in UTF-16 code units.
	maxFullNameUnits = 50
)

type registerRequest struct {
	FullName    string `json:"full_name"`
	DisplayName string `json:"display_name"`
}

func (s *Server) requireLineUser(c *gin.Context) {
	userID := c.GetHeader(HeaderLineUserID)
	if userID == "" && s.opts.AllowInsecure {
		userID = c.GetHeader(HeaderDevLineUserID)
	}
	if userID == "" {
		errorJSON(c, http.StatusUnauthorized, "UNAUTHENTICATED", "LINE user ID required")
		return
	}
	c.Set(ctxLineUserID, userID)
	c.Next()
}

// register links the caller by the full name they typed. Matching is exact;
// the LINE display name, when sent, is what gets stored.
func (s *Server) register(c *gin.Context) {
	userID := c.GetString(ctxLineUserID)

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil || !validFullName(req.FullName) {
		errorJSON(c, http.StatusBadRequest, "INVALID_INPUT", "full_name must be 1-50 characters")
		return
	}

	var opts []roster.LinkOption
	if req.DisplayName != "" {
		opts = append(opts, roster.WithDisplayName(req.DisplayName))
	}
	out := s.linker.Link(c.Request.Context(), userID, req.FullName, roster.ModeExact, opts...)

	if s.audit != nil {
		rec := audit.Record{
			Kind:        "register",
			Mode:        string(roster.ModeExact),
			UserID:      userID,
			DisplayName: req.DisplayName,
			InputName:   req.FullName,
			Normalized:  out.NameKey,
			Result:      out.Type.String(),
			MemberID:    out.MemberID,
			Reason:      out.Reason,
		}
		if err := s.audit.Append(audit.PrefixRegister, rec); err != nil {
			s.log.Error("failed to append audit record", zap.String("userId", userID), zap.Error(err))
		}
	}

	switch {
	case out.Linked():
		c.JSON(http.StatusOK, gin.H{"ok": true, "member_id": out.MemberID})
	case out.Type == roster.OutcomeError:
		s.log.Error("register failed", zap.String("userId", userID), zap.Error(out.Err), zap.String("reason", out.Reason))
		errorJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	default:
		errorJSON(c, http.StatusNotFound, "NO_MATCH", "No matching member found. Please contact an administrator.")
	}
}

func (s *Server) me(c *gin.Context) {
	userID := c.GetString(ctxLineUserID)

	member, err := s.members.FindByLineUserID(c.Request.Context(), userID)
	if errors.Is(err, roster.ErrNoResultFound) || (err == nil && member == nil) {
		errorJSON(c, http.StatusForbidden, "FORBIDDEN", "Member not found")
		return
	}
	if err != nil {
		s.log.Error("member lookup failed", zap.String("userId", userID), zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"member_id":    member.ID,
		"name":         member.Name,
		"line_user_id": member.LineUserID,
		"is_target":    member.IsTarget,
	})
}

func validFullName(name string) bool {
	n := len(utf16.Encode([]rune(name)))
	return n >= 1 && n <= maxFullNameUnits
}
