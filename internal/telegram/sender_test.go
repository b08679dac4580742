package telegram

import (
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/go-cmp/cmp"

	"hadi_poller/internal/model"
)

var dhaka = time.FixedZone("BDT", 6*3600)

type mockAPI struct {
	sent []tgbotapi.Chattable
	err  error
}

func (m *mockAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.sent = append(m.sent, c)
	return tgbotapi.Message{}, m.err
}

func TestSendRecord(t *testing.T) {
	api := &mockAPI{}
	s := NewWithAPI(api, -100500, dhaka)

	rec := model.Record{
		Number:     "+8801712345678",
		Message:    "Your code is 482913",
		OTP:        "482913",
		ReceivedAt: "2025-03-01 10:15:30",
	}
	if err := s.SendRecord(rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(api.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(api.sent))
	}

	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("expected MessageConfig, got %T", api.sent[0])
	}
	if diff := cmp.Diff(int64(-100500), msg.ChatID); diff != "" {
		t.Errorf("chat id mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(tgbotapi.ModeHTML, msg.ParseMode); diff != "" {
		t.Errorf("parse mode mismatch (-want +got):\n%s", diff)
	}
	if !msg.DisableWebPagePreview {
		t.Error("expected web page preview to be disabled")
	}
	if diff := cmp.Diff(FormatRecord(rec, dhaka), msg.Text); diff != "" {
		t.Errorf("text mismatch (-want +got):\n%s", diff)
	}
}

func TestSendRecordReturnsError(t *testing.T) {
	wantErr := errors.New("telegram: chat not found")
	s := NewWithAPI(&mockAPI{err: wantErr}, 1, dhaka)

	err := s.SendRecord(model.Record{Number: "+880111"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("expected wrapped send error, got %v", err)
	}
}

func TestFormatRecord(t *testing.T) {
	tests := []struct {
		name string
		rec  model.Record
		want string
	}{
		{
			name: "full record",
			rec: model.Record{
				Number:     "+8801712345678",
				Message:    "Your code is 482913",
				OTP:        "482913",
				ReceivedAt: "2025-03-01 10:15:30",
			},
			want: "Number : <code>+8801712345678</code>\n" +
				"Code   : <code>482913</code>\n" +
				"Time   : <code>2025-03-01 10:15:30 +0600</code>\n\n" +
				"<pre>Your code is 482913</pre>",
		},
		{
			name: "missing number and otp",
			rec: model.Record{
				Message:    "plain notice",
				ReceivedAt: "2025-03-01 10:15:30",
			},
			want: "Number : <code>Unknown</code>\n" +
				"Code   : <code></code>\n" +
				"Time   : <code>2025-03-01 10:15:30 +0600</code>\n\n" +
				"<pre>plain notice</pre>",
		},
		{
			name: "html escaped message",
			rec: model.Record{
				Number:     "+880111",
				Message:    "a <b> & c",
				ReceivedAt: "2025-03-01 10:15:30",
			},
			want: "Number : <code>+880111</code>\n" +
				"Code   : <code></code>\n" +
				"Time   : <code>2025-03-01 10:15:30 +0600</code>\n\n" +
				"<pre>a &lt;b&gt; &amp; c</pre>",
		},
		{
			name: "unparsable timestamp passed through",
			rec: model.Record{
				Number:     "+880111",
				ReceivedAt: "yesterday",
			},
			want: "Number : <code>+880111</code>\n" +
				"Code   : <code></code>\n" +
				"Time   : <code>yesterday</code>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatRecord(tt.rec, dhaka)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("message mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
