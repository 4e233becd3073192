package bot

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"daily-tasks/internal/config"
	"daily-tasks/internal/model"
	"daily-tasks/internal/repository"
	"daily-tasks/internal/service"
	"daily-tasks/internal/store/local"
)

const ownerID int64 = 42

type fakeMessenger struct {
	sent     []tgbotapi.MessageConfig
	requests int
}

func (f *fakeMessenger) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeMessenger) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeMessenger) texts() string {
	var all []string
	for _, msg := range f.sent {
		all = append(all, msg.Text)
	}
	return strings.Join(all, "\n---\n")
}

func (f *fakeMessenger) reset() {
	f.sent = nil
}

func newTestBot(t *testing.T) (*Bot, *fakeMessenger) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := repository.NewDB(dsn)
	if err != nil {
		t.Fatalf("NewDB err=%v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	settings := repository.NewSettingRepository(db)
	registry := service.NewRegistry(repository.NewTemplateRepository(db), settings, config.DefaultSeeds())
	clock := func() time.Time { return time.Date(2026, 10, 18, 6, 0, 0, 0, time.UTC) }
	planner, err := service.NewPlanner(local.New(repository.NewTaskRepository(db)), registry,
		service.NewResetMarker(settings), service.WithClock(clock), service.WithLocation(time.UTC))
	if err != nil {
		t.Fatalf("NewPlanner err=%v", err)
	}
	if _, err := planner.Load(context.Background()); err != nil {
		t.Fatalf("Load err=%v", err)
	}

	api := &fakeMessenger{}
	return newBot(api, planner, service.NewReminderService(planner), ownerID), api
}

func textMessage(chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: chatID, Type: "private"},
		From: &tgbotapi.User{ID: chatID, FirstName: "Ann"},
	}
}

func commandMessage(chatID int64, text string) *tgbotapi.Message {
	msg := textMessage(chatID, text)
	cmd := strings.Fields(text)[0]
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	return msg
}

func callback(chatID int64, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		From:    &tgbotapi.User{ID: chatID},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID, Type: "private"}},
		Data:    data,
	}
}

func say(t *testing.T, b *Bot, msg *tgbotapi.Message) {
	t.Helper()
	if err := b.handleMessage(context.Background(), msg); err != nil {
		t.Fatalf("handleMessage(%q) err=%v", msg.Text, err)
	}
}

func findByName(t *testing.T, b *Bot, name string) model.Task {
	t.Helper()
	for _, task := range b.planner.Snapshot().Tasks() {
		if task.Name == name {
			return task
		}
	}
	t.Fatalf("task %q not on the list", name)
	return model.Task{}
}

func TestNewTaskConversation(t *testing.T) {
	b, api := newTestBot(t)

	say(t, b, commandMessage(ownerID, "/newtask"))
	say(t, b, textMessage(ownerID, "Stretching"))
	say(t, b, textMessage(ownerID, "7:5"))
	if !strings.Contains(api.texts(), "Start time must be a 24h time") {
		t.Fatalf("bad start time not rejected:\n%s", api.texts())
	}
	say(t, b, textMessage(ownerID, "14:00"))
	say(t, b, textMessage(ownerID, "13:00"))
	if !strings.Contains(api.texts(), "End time must be after start time") {
		t.Fatalf("end before start not rejected:\n%s", api.texts())
	}
	say(t, b, textMessage(ownerID, "14:30"))
	say(t, b, textMessage(ownerID, btnSkip))
	say(t, b, textMessage(ownerID, "maybe"))
	if b.getConversation(ownerID).stage != stageRecurring {
		t.Fatalf("unclear answer must keep the recurring step")
	}
	say(t, b, textMessage(ownerID, btnYes))

	if b.hasConversation(ownerID) {
		t.Fatalf("conversation must end after the last step")
	}
	task := findByName(t, b, "Stretching")
	if !task.IsRecurring || task.StartTime != "14:00" || task.EndTime != "14:30" || task.Description != "" {
		t.Fatalf("task=%+v", task)
	}
	templates, err := b.planner.Templates(context.Background())
	if err != nil || len(templates) != 4 {
		t.Fatalf("templates=%d err=%v, want 4", len(templates), err)
	}
	if !strings.Contains(api.texts(), "Task saved") {
		t.Fatalf("no confirmation sent:\n%s", api.texts())
	}
}

func TestCancelConversation(t *testing.T) {
	b, api := newTestBot(t)

	say(t, b, commandMessage(ownerID, "/newtask"))
	say(t, b, textMessage(ownerID, "Dentist"))
	say(t, b, textMessage(ownerID, btnCancelDialog))

	if b.hasConversation(ownerID) {
		t.Fatalf("conversation still active after cancel")
	}
	if b.planner.Snapshot().Len() != 3 {
		t.Fatalf("cancel must not add a task")
	}
	if !strings.Contains(api.texts(), "Cancelled") {
		t.Fatalf("no cancel reply:\n%s", api.texts())
	}
}

func TestStrangerIsRejected(t *testing.T) {
	b, api := newTestBot(t)

	say(t, b, commandMessage(7, "/clear"))
	if !strings.Contains(api.texts(), "private") {
		t.Fatalf("stranger got:\n%s", api.texts())
	}
	if _, ok := b.getConfirmation(7); ok {
		t.Fatalf("stranger must not start a confirmation")
	}

	first := b.planner.Snapshot().Tasks()[0]
	if err := b.handleCallback(context.Background(), callback(7, cbTogglePrefix+first.ID)); err != nil {
		t.Fatalf("handleCallback err=%v", err)
	}
	if task, _ := b.planner.Snapshot().Find(first.ID); task.Completed {
		t.Fatalf("stranger toggled a task")
	}
	if api.requests != 1 {
		t.Fatalf("callback must still be acknowledged")
	}
}

func TestToggleCallback(t *testing.T) {
	b, api := newTestBot(t)
	first := b.planner.Snapshot().Tasks()[0]

	if err := b.handleCallback(context.Background(), callback(ownerID, cbTogglePrefix+first.ID)); err != nil {
		t.Fatalf("handleCallback err=%v", err)
	}
	if task, _ := b.planner.Snapshot().Find(first.ID); !task.Completed {
		t.Fatalf("task not completed after toggle")
	}
	last := api.sent[len(api.sent)-1]
	if _, ok := last.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup); !ok {
		t.Fatalf("toggle must answer with the refreshed list, got %T", last.ReplyMarkup)
	}

	api.reset()
	if err := b.handleCallback(context.Background(), callback(ownerID, cbTogglePrefix+"missing")); err != nil {
		t.Fatalf("handleCallback err=%v", err)
	}
	if !strings.Contains(api.texts(), "Task not found.") {
		t.Fatalf("missing task reply:\n%s", api.texts())
	}
}

func TestDeleteRecurring(t *testing.T) {
	tests := []struct {
		name          string
		answer        string
		wantTemplates int
	}{
		{name: "only today", answer: btnTodayOnly, wantTemplates: 3},
		{name: "stop repeating", answer: btnForever, wantTemplates: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := newTestBot(t)
			target := findByName(t, b, "Brush Teeth")

			if err := b.handleCallback(context.Background(), callback(ownerID, cbDeletePrefix+target.ID)); err != nil {
				t.Fatalf("handleCallback err=%v", err)
			}
			req, ok := b.getConfirmation(ownerID)
			if !ok || req.action != actionDeleteRecurring {
				t.Fatalf("confirmation=%+v ok=%t, want recurring delete", req, ok)
			}

			say(t, b, textMessage(ownerID, tt.answer))

			if _, ok := b.planner.Snapshot().Find(target.ID); ok {
				t.Fatalf("instance still on the list")
			}
			templates, err := b.planner.Templates(context.Background())
			if err != nil || len(templates) != tt.wantTemplates {
				t.Fatalf("templates=%d err=%v, want %d", len(templates), err, tt.wantTemplates)
			}
		})
	}
}

func TestDeleteOneTimeCancelled(t *testing.T) {
	b, _ := newTestBot(t)
	if _, err := b.planner.Add(context.Background(), service.TaskInput{Name: "Dentist", StartTime: "14:00", EndTime: "15:00"}); err != nil {
		t.Fatalf("Add err=%v", err)
	}
	target := findByName(t, b, "Dentist")

	if err := b.handleCallback(context.Background(), callback(ownerID, cbDeletePrefix+target.ID)); err != nil {
		t.Fatalf("handleCallback err=%v", err)
	}
	say(t, b, textMessage(ownerID, "what?"))
	if _, ok := b.getConfirmation(ownerID); !ok {
		t.Fatalf("unclear answer must keep the confirmation")
	}
	say(t, b, textMessage(ownerID, btnCancel))

	if _, ok := b.planner.Snapshot().Find(target.ID); !ok {
		t.Fatalf("cancelled delete removed the task")
	}
}

func TestClearCommand(t *testing.T) {
	b, api := newTestBot(t)

	say(t, b, commandMessage(ownerID, "/clear"))
	if !strings.Contains(api.texts(), "no one-time tasks") {
		t.Fatalf("empty clear reply:\n%s", api.texts())
	}

	for _, name := range []string{"Dentist", "Groceries"} {
		if _, err := b.planner.Add(context.Background(), service.TaskInput{Name: name, StartTime: "14:00", EndTime: "15:00"}); err != nil {
			t.Fatalf("Add err=%v", err)
		}
	}
	say(t, b, commandMessage(ownerID, "/clear"))
	say(t, b, textMessage(ownerID, btnConfirm))

	if got := b.planner.Snapshot().CountOneTime(); got != 0 {
		t.Fatalf("one-time tasks left=%d", got)
	}
	if b.planner.Snapshot().Len() != 3 {
		t.Fatalf("recurring tasks must survive clear")
	}
	if !strings.Contains(api.texts(), "Removed 2 one-time task(s)") {
		t.Fatalf("clear reply:\n%s", api.texts())
	}
}

func TestNotifyTransitions(t *testing.T) {
	b, api := newTestBot(t)
	task := model.Task{Name: "wake up", StartTime: "07:00", EndTime: "07:30"}

	err := b.NotifyTransitions([]service.Transition{
		{Task: task, From: model.StatusUpcoming, To: model.StatusCurrent},
		{Task: task, From: model.StatusCurrent, To: model.StatusOverdue},
		{Task: task, From: model.StatusOverdue, To: model.StatusCompleted},
	})
	if err != nil {
		t.Fatalf("NotifyTransitions err=%v", err)
	}
	if len(api.sent) != 2 {
		t.Fatalf("sent %d messages, want 2:\n%s", len(api.sent), api.texts())
	}
	if api.sent[0].ChatID != ownerID || !strings.Contains(api.sent[0].Text, "Time for <b>Wake up</b> (07:00–07:30)") {
		t.Fatalf("current notice=%q", api.sent[0].Text)
	}
	if !strings.Contains(api.sent[1].Text, "is overdue (ended 07:30)") {
		t.Fatalf("overdue notice=%q", api.sent[1].Text)
	}

	b.ownerChatID = 0
	api.reset()
	if err := b.NotifyTransitions([]service.Transition{{Task: task, To: model.StatusCurrent}}); err != nil || len(api.sent) != 0 {
		t.Fatalf("without owner: sent=%d err=%v", len(api.sent), err)
	}
}

func TestTaskButtonsFitCallbackLimit(t *testing.T) {
	b, _ := newTestBot(t)
	task, err := b.planner.Add(context.Background(), service.TaskInput{
		Name:        "Утренняя зарядка и растяжка перед работой",
		StartTime:   "08:00",
		EndTime:     "08:30",
		IsRecurring: true,
	})
	if err != nil {
		t.Fatalf("Add err=%v", err)
	}

	row, ok := taskButtons(service.TaskView{Task: task, Status: model.StatusUpcoming})
	if !ok {
		t.Fatalf("taskButtons skipped recurring task %q", task.ID)
	}
	for _, btn := range row {
		if btn.CallbackData == nil || len(*btn.CallbackData) > maxCallbackData {
			t.Fatalf("callback data %v exceeds 64 bytes", btn.CallbackData)
		}
	}
}

func TestTaskKeyboardSkipsLongIDs(t *testing.T) {
	views := []service.TaskView{
		{Task: model.Task{ID: "row-7", Name: "Dentist", StartTime: "14:00", EndTime: "15:00"}, Status: model.StatusUpcoming},
		{Task: model.Task{ID: strings.Repeat("a", 60), Name: "Imported", StartTime: "16:00", EndTime: "17:00"}, Status: model.StatusUpcoming},
	}

	rows := taskKeyboard(views)
	if len(rows) != 1 {
		t.Fatalf("rows=%d, want 1", len(rows))
	}
	if data := rows[0][0].CallbackData; data == nil || *data != cbTogglePrefix+"row-7" {
		t.Fatalf("first row data=%v, want toggle for row-7", data)
	}

	if rows := taskKeyboard(views[1:]); len(rows) != 0 {
		t.Fatalf("rows=%d, want none for an oversized id", len(rows))
	}
}

func TestShortTitle(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{in: "wake up", max: 24, want: "Wake up"},
		{in: "a very long task name indeed", max: 10, want: "A very lo…"},
		{in: "line\nbreak", max: 24, want: "Line break"},
	}
	for _, tt := range tests {
		if got := shortTitle(tt.in, tt.max); got != tt.want {
			t.Fatalf("shortTitle(%q, %d)=%q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestReport(t *testing.T) {
	b, api := newTestBot(t)

	say(t, b, commandMessage(ownerID, "/report"))
	if !strings.Contains(api.texts(), "<b>Upcoming</b> (3)") {
		t.Fatalf("report:\n%s", api.texts())
	}

	api.reset()
	if err := b.SendDailyReport(); err != nil {
		t.Fatalf("SendDailyReport err=%v", err)
	}
	if len(api.sent) != 1 || api.sent[0].ChatID != ownerID {
		t.Fatalf("daily report sent=%d", len(api.sent))
	}
}
