package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"
	"sync"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"daily-tasks/internal/config"
	"daily-tasks/internal/model"
	"daily-tasks/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageName
	stageStart
	stageEnd
	stageDescription
	stageRecurring
)

const (
	cbTogglePrefix = "toggle:"
	cbDeletePrefix = "delete:"
)

type conversationState struct {
	stage conversationStage
	input service.TaskInput
}

type confirmationAction int

const (
	actionDelete confirmationAction = iota
	actionDeleteRecurring
	actionClear
)

type confirmationRequest struct {
	taskID string
	action confirmationAction
}

// messenger is the part of the Telegram client the handlers talk to.
type messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot is the Telegram front end of the planner.
type Bot struct {
	api           messenger
	client        *tgbotapi.BotAPI
	planner       *service.Planner
	reminderSvc   *service.ReminderService
	ownerChatID   int64
	conversations map[int64]*conversationState
	confirmations map[int64]confirmationRequest
	mu            sync.Mutex
}

func New(token string, planner *service.Planner, reminderSvc *service.ReminderService, cfg config.Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	b := newBot(api, planner, reminderSvc, cfg.OwnerChatID)
	b.client = api
	return b, nil
}

func newBot(api messenger, planner *service.Planner, reminderSvc *service.ReminderService, ownerChatID int64) *Bot {
	return &Bot{
		api:           api,
		planner:       planner,
		reminderSvc:   reminderSvc,
		ownerChatID:   ownerChatID,
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]confirmationRequest),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if b.client == nil {
		return errors.New("bot is not connected to telegram")
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.client.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.client.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				log.Printf("handle callback: %v", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				log.Printf("handle message: %v", err)
			}
		}
	}

	return nil
}

// allowed reports whether chatID may use the planner. Without a configured
// owner every private chat is served.
func (b *Bot) allowed(chatID int64) bool {
	return b.ownerChatID == 0 || chatID == b.ownerChatID
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil || msg.Chat == nil {
		return nil
	}
	if !b.allowed(msg.Chat.ID) {
		log.Printf("[info] ignored message from chat %d", msg.Chat.ID)
		return b.sendTextWithRemove(msg.Chat.ID, "🔒 This planner is private.")
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Cancelled. Nothing was changed.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if b.hasConversation(msg.From.ID) {
		log.Printf("[info] conversation step %d from %d", b.getConversation(msg.From.ID).stage, msg.From.ID)
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "I did not get that. Send /newtask to add a task or /help for the list of commands.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(msg)
	case "help":
		return b.handleHelp(msg)
	case "newtask":
		return b.startNewTaskConversation(msg)
	case "tasks":
		return b.sendTaskList(msg.Chat.ID)
	case "report":
		return b.handleReport(msg)
	case "sort":
		return b.handleSort(msg)
	case "clear":
		return b.askClearConfirmation(msg)
	case "templates":
		return b.handleTemplates(ctx, msg)
	case "reload":
		return b.handleReload(ctx, msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Cancelled.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}

	text := fmt.Sprintf(
		"👋 Hi, %s!\n<b>I keep your daily tasks.</b> Everyday tasks come back each morning, one-time tasks stay until you clear them.\n\n"+
			"• /newtask add a task\n"+
			"• /tasks show today's list\n"+
			"• /report status summary\n"+
			"• /help all commands",
		escape(name),
	)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Commands</b>\n" +
		"• /newtask add a task step by step\n" +
		"• /tasks today's list, tap a task to mark it done or 🗑 to delete\n" +
		"• /sort order the list by start time\n" +
		"• /clear remove all one-time tasks\n" +
		"• /templates list everyday tasks\n" +
		"• /report status summary\n" +
		"• /reload fetch the list again\n" +
		"• /cancel stop the current input"
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleReport(msg *tgbotapi.Message) error {
	return b.sendText(msg.Chat.ID, b.reminderSvc.DailySummary(b.planner.Now()))
}

func (b *Bot) handleSort(msg *tgbotapi.Message) error {
	b.planner.SortByStartTime()
	return b.sendTaskList(msg.Chat.ID)
}

func (b *Bot) handleTemplates(ctx context.Context, msg *tgbotapi.Message) error {
	templates, err := b.planner.Templates(ctx)
	if err != nil {
		return b.sendError(msg.Chat.ID, err)
	}
	if len(templates) == 0 {
		return b.sendText(msg.Chat.ID, "No everyday tasks yet. Answer «Yes» to the last /newtask question to add one.")
	}

	var builder strings.Builder
	builder.WriteString("♻️ <b>Everyday tasks</b>\n")
	for _, tpl := range templates {
		builder.WriteString(fmt.Sprintf("• <b>%s–%s</b> %s\n", tpl.StartTime, tpl.EndTime, escape(normalizeTitle(tpl.Name))))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleReload(ctx context.Context, msg *tgbotapi.Message) error {
	didReset, err := b.planner.Load(ctx)
	if err != nil {
		return b.sendError(msg.Chat.ID, err)
	}
	if didReset {
		if err := b.sendText(msg.Chat.ID, "🌅 New day: everyday tasks are back on the list."); err != nil {
			return err
		}
	}
	return b.sendTaskList(msg.Chat.ID)
}

func (b *Bot) startNewTaskConversation(msg *tgbotapi.Message) error {
	log.Printf("[info] start new task conversation user=%d", msg.From.ID)
	b.clearConfirmation(msg.From.ID)
	b.setConversation(msg.From.ID, &conversationState{stage: stageName})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 New task.\n<b>Step 1:</b> what is it called?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageName:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "The name cannot be empty. What is the task called?", cancelKeyboard())
		}
		state.input.Name = text
		state.stage = stageStart
		return b.sendWithReplyMarkup(msg.Chat.ID, "⏰ <b>Step 2:</b> start time, e.g. <code>07:30</code>", cancelKeyboard())
	case stageStart:
		if !service.ValidClock(text) {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Start time must be a 24h time like <code>07:30</code>.", cancelKeyboard())
		}
		state.input.StartTime = text
		state.stage = stageEnd
		return b.sendWithReplyMarkup(msg.Chat.ID, "⏳ <b>Step 3:</b> end time, e.g. <code>08:00</code>", cancelKeyboard())
	case stageEnd:
		if !service.ValidClock(text) {
			return b.sendWithReplyMarkup(msg.Chat.ID, "End time must be a 24h time like <code>08:00</code>.", cancelKeyboard())
		}
		if text <= state.input.StartTime {
			return b.sendWithReplyMarkup(msg.Chat.ID, fmt.Sprintf("End time must be after start time (%s).", state.input.StartTime), cancelKeyboard())
		}
		state.input.EndTime = text
		state.stage = stageDescription
		return b.sendWithReplyMarkup(msg.Chat.ID, "✏️ <b>Step 4:</b> a short description (or «Skip»).", skipKeyboard())
	case stageDescription:
		if !isSkipInput(text) {
			state.input.Description = text
		}
		state.stage = stageRecurring
		return b.sendWithReplyMarkup(msg.Chat.ID, "🔁 Repeat this task every day?", yesNoKeyboard())
	case stageRecurring:
		switch {
		case isYesInput(text):
			state.input.IsRecurring = true
		case isNoInput(text):
			state.input.IsRecurring = false
		default:
			return b.sendWithReplyMarkup(msg.Chat.ID, "Choose «Yes» or «No».", yesNoKeyboard())
		}
		input := state.input
		b.clearConversation(msg.From.ID)
		return b.finishTaskCreation(ctx, msg.Chat.ID, input)
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Input was reset. Try again with /newtask.")
	}
}

func (b *Bot) finishTaskCreation(ctx context.Context, chatID int64, input service.TaskInput) error {
	task, err := b.planner.Add(ctx, input)
	if err != nil {
		// The task can be stored while its template was not.
		if sendErr := b.sendError(chatID, err); sendErr != nil || task.ID == "" {
			return sendErr
		}
	}

	var summary strings.Builder
	summary.WriteString("✅ <b>Task saved</b>\n")
	summary.WriteString(fmt.Sprintf("• <b>Name:</b> %s\n", escape(normalizeTitle(task.Name))))
	summary.WriteString(fmt.Sprintf("• <b>Time:</b> %s–%s\n", task.StartTime, task.EndTime))
	if task.Description != "" {
		summary.WriteString(fmt.Sprintf("• <b>Description:</b> %s\n", escape(task.Description)))
	}
	if task.IsRecurring {
		summary.WriteString("• <b>Repeats:</b> every day\n")
	}

	if err := b.sendTextWithRemove(chatID, strings.TrimSpace(summary.String())); err != nil {
		return err
	}
	return b.sendTaskList(chatID)
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	text := strings.TrimSpace(msg.Text)

	switch req.action {
	case actionDeleteRecurring:
		switch {
		case isTodayOnlyInput(text):
			b.clearConfirmation(msg.From.ID)
			return b.deleteTaskAndRefresh(ctx, msg.Chat.ID, req.taskID, false)
		case isForeverInput(text):
			b.clearConfirmation(msg.From.ID)
			return b.deleteTaskAndRefresh(ctx, msg.Chat.ID, req.taskID, true)
		case isCancelInput(text):
			b.clearConfirmation(msg.From.ID)
			return b.sendMenuPlaceholder(msg.Chat.ID)
		}
		return b.sendWithReplyMarkup(msg.Chat.ID, "Remove it only for today, for every day, or cancel.", recurringDeleteKeyboard())
	default:
		switch {
		case isConfirmInput(text):
			b.clearConfirmation(msg.From.ID)
			if req.action == actionClear {
				return b.clearAndRefresh(ctx, msg.Chat.ID)
			}
			return b.deleteTaskAndRefresh(ctx, msg.Chat.ID, req.taskID, false)
		case isCancelInput(text):
			b.clearConfirmation(msg.From.ID)
			return b.sendMenuPlaceholder(msg.Chat.ID)
		}
		prompt := "Confirm or cancel the deletion."
		if req.action == actionClear {
			prompt = "Confirm or cancel clearing one-time tasks."
		}
		return b.sendWithReplyMarkup(msg.Chat.ID, prompt, confirmKeyboard())
	}
}

func (b *Bot) askClearConfirmation(msg *tgbotapi.Message) error {
	n := b.planner.Snapshot().CountOneTime()
	if n == 0 {
		return b.sendText(msg.Chat.ID, "There are no one-time tasks to clear.")
	}
	b.clearConversation(msg.From.ID)
	b.setConfirmation(msg.From.ID, confirmationRequest{action: actionClear})
	return b.sendWithReplyMarkup(msg.Chat.ID, fmt.Sprintf("Remove %d one-time task(s)? Everyday tasks stay.", n), confirmKeyboard())
}

func (b *Bot) askDeleteConfirmation(chatID int64, from *tgbotapi.User, taskID string) error {
	task, ok := b.planner.Snapshot().Find(taskID)
	if !ok {
		return b.sendText(chatID, "Task not found.")
	}

	b.clearConversation(from.ID)
	if task.IsRecurring {
		b.setConfirmation(from.ID, confirmationRequest{taskID: task.ID, action: actionDeleteRecurring})
		text := fmt.Sprintf("«%s» is an everyday task. Remove it only for today, or stop repeating it?", escape(normalizeTitle(task.Name)))
		return b.sendWithReplyMarkup(chatID, text, recurringDeleteKeyboard())
	}

	b.setConfirmation(from.ID, confirmationRequest{taskID: task.ID, action: actionDelete})
	text := fmt.Sprintf("Delete «%s»?", escape(normalizeTitle(task.Name)))
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) toggleAndRefresh(ctx context.Context, chatID int64, taskID string) error {
	task, err := b.planner.ToggleComplete(ctx, taskID)
	if err != nil {
		return b.sendError(chatID, err)
	}
	log.Printf("[info] task toggled id=%s completed=%t", task.ID, task.Completed)
	return b.sendTaskList(chatID)
}

func (b *Bot) deleteTaskAndRefresh(ctx context.Context, chatID int64, taskID string, withTemplate bool) error {
	remove := b.planner.Delete
	if withTemplate {
		remove = b.planner.RemoveRecurring
	}

	task, err := remove(ctx, taskID)
	if err != nil {
		// A recurring instance can be gone while its template is still registered.
		if sendErr := b.sendErrorWithRemove(chatID, err); sendErr != nil || task.ID == "" {
			return sendErr
		}
	}

	info := fmt.Sprintf("🗑 «%s» deleted.", escape(normalizeTitle(task.Name)))
	switch {
	case task.IsRecurring && withTemplate:
		info = fmt.Sprintf("🗑 «%s» will no longer repeat.", escape(normalizeTitle(task.Name)))
	case task.IsRecurring:
		info = fmt.Sprintf("🗑 «%s» removed for today. It comes back tomorrow.", escape(normalizeTitle(task.Name)))
	}
	if err := b.sendTextWithRemove(chatID, info); err != nil {
		return err
	}
	return b.sendTaskList(chatID)
}

func (b *Bot) clearAndRefresh(ctx context.Context, chatID int64) error {
	n, err := b.planner.ClearOneTime(ctx)
	if err != nil {
		return b.sendErrorWithRemove(chatID, err)
	}
	if err := b.sendTextWithRemove(chatID, fmt.Sprintf("🧹 Removed %d one-time task(s).", n)); err != nil {
		return err
	}
	return b.sendTaskList(chatID)
}

// SendDailyReport sends the status summary to the owner chat.
func (b *Bot) SendDailyReport() error {
	if b.ownerChatID == 0 {
		return nil
	}
	return b.sendText(b.ownerChatID, b.reminderSvc.DailySummary(b.planner.Now()))
}

// NotifyTransitions tells the owner when a task becomes current or overdue.
func (b *Bot) NotifyTransitions(transitions []service.Transition) error {
	if b.ownerChatID == 0 {
		return nil
	}

	var errs []error
	for _, tr := range transitions {
		text := transitionText(tr)
		if text == "" {
			continue
		}
		if err := b.sendText(b.ownerChatID, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func transitionText(tr service.Transition) string {
	name := escape(normalizeTitle(tr.Task.Name))
	switch tr.To {
	case model.StatusCurrent:
		return fmt.Sprintf("%s Time for <b>%s</b> (%s–%s)", service.StatusIcon(tr.To), name, tr.Task.StartTime, tr.Task.EndTime)
	case model.StatusOverdue:
		return fmt.Sprintf("%s <b>%s</b> is overdue (ended %s)", service.StatusIcon(tr.To), name, tr.Task.EndTime)
	default:
		return ""
	}
}

func (b *Bot) sendTaskList(chatID int64) error {
	now := b.planner.Now()
	views := b.planner.Snapshot().Views(now)
	if len(views) == 0 {
		return b.sendText(chatID, "📝 No tasks yet! Add your first task with /newtask.")
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("📋 <b>Today</b> · %s\n", now.Format("15:04")))
	builder.WriteString("Tap a task to mark it done, 🗑 to delete it.\n\n")

	for _, view := range views {
		builder.WriteString(service.FormatTask(view))
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	if buttons := taskKeyboard(views); len(buttons) > 0 {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	}
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

// maxCallbackData is Telegram's limit on callback_data, in bytes.
const maxCallbackData = 64

// taskKeyboard builds one button row per task. Tasks whose id does not fit
// into callback data are listed without buttons.
func taskKeyboard(views []service.TaskView) [][]tgbotapi.InlineKeyboardButton {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(views))
	for _, view := range views {
		row, ok := taskButtons(view)
		if !ok {
			log.Printf("[info] task id too long for buttons: %s", view.ID)
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func taskButtons(view service.TaskView) ([]tgbotapi.InlineKeyboardButton, bool) {
	if len(cbTogglePrefix+view.ID) > maxCallbackData || len(cbDeletePrefix+view.ID) > maxCallbackData {
		return nil, false
	}
	label := fmt.Sprintf("%s %s %s", service.StatusIcon(view.Status), view.StartTime, shortTitle(view.Name, 24))
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(label, cbTogglePrefix+view.ID),
		tgbotapi.NewInlineKeyboardButtonData("🗑", cbDeletePrefix+view.ID),
	), true
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("callback ack: %v", err)
	}
	if !b.allowed(cb.Message.Chat.ID) {
		return nil
	}

	data := cb.Data
	switch {
	case strings.HasPrefix(data, cbTogglePrefix):
		log.Printf("[info] callback toggle user=%d task=%s", cb.From.ID, strings.TrimPrefix(data, cbTogglePrefix))
		return b.toggleAndRefresh(ctx, cb.Message.Chat.ID, strings.TrimPrefix(data, cbTogglePrefix))
	case strings.HasPrefix(data, cbDeletePrefix):
		log.Printf("[info] callback delete request user=%d task=%s", cb.From.ID, strings.TrimPrefix(data, cbDeletePrefix))
		return b.askDeleteConfirmation(cb.Message.Chat.ID, cb.From, strings.TrimPrefix(data, cbDeletePrefix))
	default:
		return nil
	}
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelNewTask):
		return true, b.startNewTaskConversation(msg)
	case strings.ToLower(menuLabelTasks):
		return true, b.sendTaskList(msg.Chat.ID)
	case strings.ToLower(menuLabelReport):
		return true, b.handleReport(msg)
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}

func (b *Bot) sendError(chatID int64, err error) error {
	return b.sendText(chatID, "❌ "+escape(service.UserMessage(err)))
}

func (b *Bot) sendErrorWithRemove(chatID int64, err error) error {
	return b.sendTextWithRemove(chatID, "❌ "+escape(service.UserMessage(err)))
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendTextWithRemove(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	if _, err := b.api.Send(msg); err != nil {
		return err
	}
	return b.sendMenuPlaceholder(chatID)
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendMenuPlaceholder(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "🔹 Main menu")
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) getConfirmation(userID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[userID]
	return req, ok
}

func (b *Bot) setConfirmation(userID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[userID] = req
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, userID)
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	clean = normalizeTitle(clean)
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func escape(s string) string {
	return html.EscapeString(s)
}

func normalizeTitle(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
