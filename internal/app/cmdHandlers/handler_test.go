package cmdHandlers

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ilinovom/fido5011-bot/internal/config"
	"github.com/ilinovom/fido5011-bot/internal/repository"
	"github.com/ilinovom/fido5011-bot/internal/service"
	"github.com/ilinovom/fido5011-bot/pkg/telegram"
	"github.com/rs/zerolog"
)

const (
	adminID = 1
	userID  = 42
)

type sent struct {
	chatID   int64
	replyTo  int
	text     string
	keyboard [][]string
}

type fakeSender struct {
	msgs []sent
}

func (f *fakeSender) SendMessage(ctx context.Context, chatID int64, text string, keyboard [][]string) (int, error) {
	f.msgs = append(f.msgs, sent{chatID: chatID, text: text, keyboard: keyboard})
	return len(f.msgs), nil
}

func (f *fakeSender) SendReply(ctx context.Context, chatID int64, replyTo int, text string) (int, error) {
	f.msgs = append(f.msgs, sent{chatID: chatID, replyTo: replyTo, text: text})
	return len(f.msgs), nil
}

func (f *fakeSender) last(t *testing.T) sent {
	t.Helper()
	if len(f.msgs) == 0 {
		t.Fatal("nothing sent")
	}
	return f.msgs[len(f.msgs)-1]
}

type fakeDecider struct {
	out   service.Outcome
	calls int
}

func (f *fakeDecider) Decide(ctx context.Context, userID, now int64) service.Outcome {
	f.calls++
	return f.out
}

type fixture struct {
	h        *CmdHandler
	tg       *fakeSender
	decider  *fakeDecider
	repo     *repository.FileRepository
	settings *service.SettingsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, err := repository.NewFileRepository(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("file repo: %v", err)
	}
	settings := service.NewSettingsService(repo, map[int64]bool{adminID: true}, 3600, 1)
	tg := &fakeSender{}
	dec := &fakeDecider{}
	h := NewCmdHandler(tg, service.NewUserService(repo), settings, dec, config.DefaultMessages(), zerolog.Nop())
	h.now = func() time.Time { return time.Unix(1000, 0) }
	return &fixture{h: h, tg: tg, decider: dec, repo: repo, settings: settings}
}

func private(from int64, text string) *telegram.Message {
	return &telegram.Message{
		MessageID: 1,
		From:      &telegram.User{ID: from},
		Chat:      telegram.Chat{ID: from, Type: "private"},
		Text:      text,
	}
}

func (f *fixture) say(from int64, texts ...string) {
	for _, text := range texts {
		f.h.HandleMessage(context.Background(), private(from, text))
	}
}

func TestHandler_RestartNoticeShownOnce(t *testing.T) {
	f := newFixture(t)
	f.say(userID, "hello")
	first := f.tg.last(t)
	if !strings.HasPrefix(first.text, config.DefaultMessages()["restarted"]) {
		t.Fatalf("first reply %q has no restart notice", first.text)
	}
	f.say(userID, "/start")
	second := f.tg.last(t)
	if second.text != config.DefaultMessages()["menu"] {
		t.Fatalf("second reply %q", second.text)
	}
}

func TestHandler_MenuDependsOnRights(t *testing.T) {
	f := newFixture(t)
	f.say(userID, "hi")
	if kb := f.tg.last(t).keyboard; len(kb) != 1 || kb[0][0] != LabelChangeDirectory {
		t.Fatalf("user keyboard %v", kb)
	}
	f.say(adminID, "hi")
	if kb := f.tg.last(t).keyboard; len(kb) != 2 || kb[1][0] != LabelSetInterval {
		t.Fatalf("admin keyboard %v", kb)
	}
}

func TestHandler_AdminSetsInterval(t *testing.T) {
	f := newFixture(t)
	f.say(adminID, "hi", LabelSetInterval)
	if _, ok := f.h.convs[adminID].(AwaitingIntervalState); !ok {
		t.Fatalf("state %T", f.h.convs[adminID])
	}
	f.say(adminID, "7200")

	got, err := f.settings.Interval(context.Background())
	if err != nil || got != 7200 {
		t.Fatalf("interval %d, %v", got, err)
	}
	if text := f.tg.last(t).text; !strings.Contains(text, "7200") {
		t.Fatalf("confirmation %q does not echo value", text)
	}
	if st := f.h.convs[adminID]; st != (StartState{}) {
		t.Fatalf("state %#v", st)
	}
}

func TestHandler_NonAdminCannotSetInterval(t *testing.T) {
	f := newFixture(t)
	f.say(userID, "hi", LabelSetInterval, "7200")

	got, err := f.settings.Interval(context.Background())
	if err != nil || got != 3600 {
		t.Fatalf("interval %d, %v", got, err)
	}
	var rights bool
	for _, m := range f.tg.msgs {
		if m.text == config.DefaultMessages()["no_rights"] {
			rights = true
		}
	}
	if !rights {
		t.Fatal("no insufficient rights reply")
	}
	if _, ok := f.h.convs[userID].(AwaitingCommandState); !ok {
		t.Fatalf("state %T", f.h.convs[userID])
	}
}

func TestHandler_InvalidInterval(t *testing.T) {
	f := newFixture(t)
	for _, in := range []string{"abc", "-5", "1.5"} {
		f.say(adminID, "/start", LabelSetInterval, in)
		if text := f.tg.last(t).text; !strings.Contains(text, in) {
			t.Fatalf("%q: reply %q does not echo input", in, text)
		}
	}
	got, _ := f.settings.Interval(context.Background())
	if got != 3600 {
		t.Fatalf("interval changed to %d", got)
	}
}

func TestHandler_IntervalCancel(t *testing.T) {
	f := newFixture(t)
	f.say(adminID, "hi", LabelSetInterval, CancelInput)
	if text := f.tg.last(t).text; text != config.DefaultMessages()["unchanged"] {
		t.Fatalf("reply %q", text)
	}
}

func TestHandler_DescrRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.say(userID, "hi", LabelChangeDirectory)
	if text := f.tg.last(t).text; text != config.DefaultMessages()["current_descr_empty"] {
		t.Fatalf("prompt %q", text)
	}
	f.say(userID, "  Alice from Moscow ")
	if text := f.tg.last(t).text; text != config.DefaultMessages()["descr_saved"] {
		t.Fatalf("reply %q", text)
	}

	u, err := f.repo.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.DescrText() != "Alice from Moscow" || u.LastSeen != 1000 {
		t.Fatalf("state %+v", u)
	}

	f.say(userID, "menu please", LabelChangeDirectory)
	if text := f.tg.last(t).text; !strings.Contains(text, "Alice from Moscow") {
		t.Fatalf("prompt %q does not show current text", text)
	}
	f.say(userID, CancelInput)
	u, _ = f.repo.Get(context.Background(), userID)
	if u.DescrText() != "Alice from Moscow" {
		t.Fatalf("descr changed to %q", u.DescrText())
	}
}

func TestHandler_EmptyOriginRePrompts(t *testing.T) {
	f := newFixture(t)
	f.say(userID, "hi", LabelChangeDirectory, "")
	if _, ok := f.h.convs[userID].(AwaitingOriginState); !ok {
		t.Fatalf("state %T", f.h.convs[userID])
	}
}

func TestHandler_UnrecognisedCommandRePrompts(t *testing.T) {
	f := newFixture(t)
	f.say(userID, "hi", "what?")
	if text := f.tg.last(t).text; text != config.DefaultMessages()["menu"] {
		t.Fatalf("reply %q", text)
	}
	if _, ok := f.h.convs[userID].(AwaitingCommandState); !ok {
		t.Fatalf("state %T", f.h.convs[userID])
	}
}

func group(from int64, text string) *telegram.Message {
	return &telegram.Message{
		MessageID: 77,
		From:      &telegram.User{ID: from},
		Chat:      telegram.Chat{ID: -100, Type: "supergroup"},
		Date:      200,
		Text:      text,
	}
}

func TestHandler_GroupAnnounce(t *testing.T) {
	f := newFixture(t)
	f.decider.out = service.Outcome{Kind: service.Announce, Text: "2:5011/102 Alice"}
	f.h.HandleMessage(context.Background(), group(userID, "hello all"))

	m := f.tg.last(t)
	if m.chatID != -100 || m.replyTo != 77 || m.text != "2:5011/102 Alice" {
		t.Fatalf("reply %+v", m)
	}
}

func TestHandler_GroupSuppressedAndCommands(t *testing.T) {
	f := newFixture(t)
	f.decider.out = service.Outcome{Kind: service.Suppressed, Reason: service.ReasonTooSoon}
	f.h.HandleMessage(context.Background(), group(userID, "hello"))
	f.h.HandleMessage(context.Background(), group(userID, "/ban"))

	bot := group(userID, "beep")
	bot.From.IsBot = true
	f.h.HandleMessage(context.Background(), bot)

	if len(f.tg.msgs) != 0 {
		t.Fatalf("unexpected messages %+v", f.tg.msgs)
	}
	if f.decider.calls != 1 {
		t.Fatalf("decider called %d times", f.decider.calls)
	}
}

func TestHandler_IntervalPromptShowsDisplayUnits(t *testing.T) {
	f := newFixture(t)
	f.settings = service.NewSettingsService(f.repo, map[int64]bool{adminID: true}, 7200, 60)
	f.h.settings = f.settings
	f.say(adminID, "hi", LabelSetInterval)
	want := config.DefaultMessages()["current_interval"]
	want = strings.Replace(want, "%d", "120", 1)
	if text := f.tg.last(t).text; text != want {
		t.Fatalf("prompt %q, want %q", text, want)
	}
	f.say(adminID, "3")
	if got, _ := f.settings.Interval(context.Background()); got != 180 {
		t.Fatalf("interval %d, want 180", got)
	}
}
