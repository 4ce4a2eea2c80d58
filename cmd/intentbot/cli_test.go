package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xcro3dile/intentbot-go/internal/adapters/history"
	"github.com/0xcro3dile/intentbot-go/internal/config"
	"github.com/0xcro3dile/intentbot-go/internal/domain/entities"
)

type scriptedBot struct {
	turns []entities.ChatTurn
}

func (b *scriptedBot) Respond(ctx context.Context, sessionID, text string) (string, error) {
	reply := "reply to " + text
	b.turns = append(b.turns, entities.ChatTurn{
		UserText:  text,
		BotText:   reply,
		Timestamp: time.Date(2024, 5, 6, 7, 8, len(b.turns), 0, time.UTC),
	})
	return reply, nil
}

func (b *scriptedBot) History(ctx context.Context, sessionID string, order entities.Order) ([]entities.ChatTurn, error) {
	out := append([]entities.ChatTurn{}, b.turns...)
	if order == entities.ReverseChronological {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func TestChatLoop(t *testing.T) {
	bot := &scriptedBot{}
	in := strings.NewReader("hello\n\nbye\n/history\n/quit\nignored\n")
	var out bytes.Buffer

	require.NoError(t, chatLoop(context.Background(), bot, "s1", in, &out))

	text := out.String()
	assert.Contains(t, text, "Session s1")
	assert.Contains(t, text, "reply to hello")
	assert.Contains(t, text, "reply to bye")
	assert.Contains(t, text, "2024-05-06 07:08:00")
	assert.NotContains(t, text, "ignored")
	assert.Len(t, bot.turns, 2)

	// newest first
	assert.Less(t, strings.LastIndex(text, "2024-05-06 07:08:01"), strings.LastIndex(text, "2024-05-06 07:08:00"))
}

func TestChatLoop_EmptyHistoryAndEOF(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, chatLoop(context.Background(), &scriptedBot{}, "s", strings.NewReader("/history\n"), &out))
	assert.Contains(t, out.String(), "no history yet")
}

func TestChatLoop_CancelWhileWaitingForInput(t *testing.T) {
	in, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- chatLoop(ctx, &scriptedBot{}, "s", in, io.Discard) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("chat loop ignored cancellation while blocked on input")
	}
}

func TestClassifyCommand(t *testing.T) {
	dir := t.TempDir()
	corpus := filepath.Join(dir, "intents.json")
	require.NoError(t, os.WriteFile(corpus, []byte(`{"intents": [
		{"tag": "greeting", "patterns": ["hello there"], "responses": ["Hi"]},
		{"tag": "goodbye", "patterns": ["see you later"], "responses": ["Bye"]}
	]}`), 0644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"classify",
		"--config", filepath.Join(dir, "absent.yaml"),
		"--corpus", corpus,
		"see", "you",
	})
	require.NoError(t, rootCmd.Execute())

	fields := strings.Fields(out.String())
	require.Len(t, fields, 2)
	assert.Equal(t, "goodbye", fields[0])
}

func TestHistoryCommand(t *testing.T) {
	dir := t.TempDir()
	dsn := filepath.Join(dir, "history.db")

	store, err := history.NewSQLiteStore(dsn)
	require.NoError(t, err)
	ctx := context.Background()
	for i, text := range []string{"first", "second"} {
		require.NoError(t, store.Append(ctx, "abc", entities.ChatTurn{
			UserText:  text,
			BotText:   "ok",
			Timestamp: time.Date(2024, 1, 1, 0, 0, i, 0, time.UTC),
		}))
	}
	require.NoError(t, store.Close())

	cfg := config.DefaultConfig()
	cfg.History.Backend = "sqlite"
	cfg.History.DSN = dsn
	cfgPath := filepath.Join(dir, "intentbot.yaml")
	require.NoError(t, cfg.Save(cfgPath))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"history", "--config", cfgPath, "--session", "abc"})
	require.NoError(t, rootCmd.Execute())

	text := out.String()
	assert.Less(t, strings.Index(text, "second"), strings.Index(text, "first"))
	assert.Contains(t, text, "2024-01-01 00:00:01")
}
