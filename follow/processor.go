// Package follow turns queued webhook events into link and unlink calls.
package follow

import (
	"context"
	"errors"
	"time"

	"github.com/kubex/rclink/audit"
	"github.com/kubex/rclink/line"
	"github.com/kubex/rclink/queue"
	"github.com/kubex/rclink/roster"
	"go.uber.org/zap"
)

// MaxEventAge drops events LINE redelivered long after the fact.
const MaxEventAge = 24 * time.Hour

const ResultExpired = "EXPIRED"

type Linker interface {
	Link(ctx context.Context, userID, observedName string, mode roster.Mode, opts ...roster.LinkOption) roster.LinkOutcome
	Unlink(ctx context.Context, userID string) roster.UnlinkOutcome
}

type ProfileFetcher interface {
	GetProfile(ctx context.Context, userID string) (*line.Profile, error)
}

type AuditLog interface {
	Append(prefix string, rec audit.Record) error
}

type JobSource interface {
	Dequeue(ctx context.Context, timeout time.Duration) (queue.Job, error)
}

type Processor struct {
	linker   Linker
	profiles ProfileFetcher
	audit    AuditLog
	log      *zap.Logger
	now      func() time.Time
}

func NewProcessor(linker Linker, profiles ProfileFetcher, auditLog AuditLog, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{linker: linker, profiles: profiles, audit: auditLog, log: log, now: time.Now}
}

// Process handles one job and appends its audit record. The returned error is
// non-nil only for storage failures.
func (p *Processor) Process(ctx context.Context, job queue.Job) (audit.Record, error) {
	rec := audit.Record{Kind: job.Kind, Mode: job.Mode, UserID: job.UserID}

	if p.now().Sub(job.EventTime()) > MaxEventAge {
		rec.Result = ResultExpired
		rec.Reason = "event timestamp too old"
		p.write(rec)
		return rec, nil
	}

	var err error
	switch job.Kind {
	case queue.KindUnfollow:
		err = p.unfollow(ctx, job, &rec)
	default:
		err = p.follow(ctx, job, &rec)
	}
	p.write(rec)
	return rec, err
}

func (p *Processor) follow(ctx context.Context, job queue.Job, rec *audit.Record) error {
	displayName := ""
	if profile, err := p.profiles.GetProfile(ctx, job.UserID); err != nil {
		p.log.Warn("failed to get LINE profile", zap.String("userId", job.UserID), zap.Error(err))
	} else {
		displayName = profile.DisplayName
	}
	rec.DisplayName = displayName

	out := p.linker.Link(ctx, job.UserID, displayName, roster.ModeSilent)
	if out.Type == roster.OutcomeAlreadyLinkedOther && out.Retryable() {
		// A lost claim race is transient; one more look settles it.
		out = p.linker.Link(ctx, job.UserID, displayName, roster.ModeSilent)
	}

	rec.Normalized = out.NameKey
	rec.Result = out.Type.String()
	rec.MemberID = out.MemberID
	rec.Reason = out.Reason

	if out.Type == roster.OutcomeError {
		return linkError(out)
	}
	return nil
}

func (p *Processor) unfollow(ctx context.Context, job queue.Job, rec *audit.Record) error {
	out := p.linker.Unlink(ctx, job.UserID)
	rec.Result = out.Type.String()
	rec.MemberID = out.MemberID
	rec.MemberName = out.MemberName
	rec.Reason = out.Reason

	if out.Type == roster.UnlinkError {
		if out.Err != nil {
			return out.Err
		}
		return errors.New(out.Reason)
	}
	return nil
}

func (p *Processor) write(rec audit.Record) {
	if p.audit == nil {
		return
	}
	if err := p.audit.Append(audit.PrefixWebhook, rec); err != nil {
		p.log.Error("failed to append audit record", zap.String("userId", rec.UserID), zap.Error(err))
	}
}

// Run drains src until ctx is cancelled. Job failures are logged and never
// stop the loop.
func (p *Processor) Run(ctx context.Context, src JobSource) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		job, err := src.Dequeue(ctx, 5*time.Second)
		if errors.Is(err, queue.ErrEmpty) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.log.Error("failed to dequeue job", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		rec, err := p.Process(ctx, job)
		if err != nil {
			p.log.Error("job failed", zap.String("kind", job.Kind), zap.String("userId", job.UserID), zap.Error(err))
			continue
		}
		p.log.Info("job completed",
			zap.String("kind", rec.Kind),
			zap.String("userId", rec.UserID),
			zap.String("result", rec.Result),
			zap.Int64("memberId", rec.MemberID))
	}
}

func linkError(out roster.LinkOutcome) error {
	if out.Err != nil {
		return out.Err
	}
	return errors.New(out.Reason)
}
