package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readRecords(t *testing.T, path string) []Record {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec Record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		out = append(out, rec)
	}
	require.NoError(t, scanner.Err())
	return out
}

func TestAppend(t *testing.T) {
	base := t.TempDir()
	l := New(base)
	l.now = func() time.Time { return time.Date(2025, 9, 1, 20, 0, 0, 0, time.UTC) }

	require.NoError(t, l.Append(PrefixWebhook, Record{Kind: "follow", UserID: "U1", Result: "LINKED", MemberID: 5}))
	require.NoError(t, l.Append(PrefixWebhook, Record{Kind: "follow", UserID: "U2", Result: "AMBIGUOUS", Reason: "multiple matches found"}))
	require.NoError(t, l.Append(PrefixRegister, Record{Kind: "register", UserID: "U3", Result: "UNMATCHED"}))

	webhook := readRecords(t, filepath.Join(base, "line", "WEBHOOK-2025-09-01.ndjson"))
	require.Len(t, webhook, 2)
	assert.Equal(t, "2025-09-02T05:00:00+09:00", webhook[0].TS)
	assert.Equal(t, int64(5), webhook[0].MemberID)
	assert.Equal(t, "AMBIGUOUS", webhook[1].Result)

	register := readRecords(t, filepath.Join(base, "line", "REGISTER-2025-09-01.ndjson"))
	require.Len(t, register, 1)
	assert.Equal(t, "U3", register[0].UserID)
}

func TestAppendConcurrent(t *testing.T) {
	base := t.TempDir()
	l := New(base)
	fixed := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, l.Append(PrefixWebhook, Record{Kind: "follow", UserID: "U", Result: "UNMATCHED"}))
		}()
	}
	wg.Wait()

	assert.Len(t, readRecords(t, filepath.Join(base, "line", "WEBHOOK-2025-09-01.ndjson")), 20)
}

func TestFormatJST(t *testing.T) {
	assert.Equal(t, "2025-01-01T09:00:00+09:00", FormatJST(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
}
