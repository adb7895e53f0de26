package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-casa/internal/service/dialogue"
	"github.com/seu-repo/sigec-casa/internal/service/reminder"
)

// ReloadFunc re-reads the room snapshot and grammar from disk and hands
// them to the running controller. It returns the loaded room name.
type ReloadFunc func() (string, error)

type StatusHandler struct {
	controller   *dialogue.Controller
	reminders    *reminder.Scheduler
	reload       ReloadFunc
	breakerState func() string
	room         string
	caps         []string
	version      string
	log          *zap.Logger
}

func NewStatusHandler(controller *dialogue.Controller, reminders *reminder.Scheduler, reload ReloadFunc, room string, caps []string, version string, log *zap.Logger) *StatusHandler {
	return &StatusHandler{
		controller: controller,
		reminders:  reminders,
		reload:     reload,
		room:       room,
		caps:       caps,
		version:    version,
		log:        log,
	}
}

// SetBreakerState installs a reader for the automation bus circuit
// breaker so /status can report it. Optional.
func (h *StatusHandler) SetBreakerState(fn func() string) {
	h.breakerState = fn
}

func (h *StatusHandler) RegisterRoutes(api fiber.Router) {
	api.Get("/status", h.Status)
	api.Post("/reload", h.Reload)
}

type reminderView struct {
	ID    uint32    `json:"id"`
	Text  string    `json:"text"`
	DueAt time.Time `json:"due_at"`
}

// Status reports the dialogue worker's live state.
func (h *StatusHandler) Status(c *fiber.Ctx) error {
	pending := h.reminders.Snapshot()
	views := make([]reminderView, 0, len(pending))
	for _, r := range pending {
		views = append(views, reminderView{ID: r.ID, Text: r.Text, DueAt: r.DueAt})
	}

	busBreaker := "unknown"
	if h.breakerState != nil {
		busBreaker = h.breakerState()
	}

	return c.JSON(fiber.Map{
		"version":         h.version,
		"room":            h.room,
		"capabilities":    h.caps,
		"state":           h.controller.State().String(),
		"conversation_id": h.controller.ConversationID(),
		"bus_breaker":     busBreaker,
		"reminders":       views,
	})
}

// Reload re-reads room and grammar configuration. The swap happens at
// the controller's next idle slice, never mid-conversation.
func (h *StatusHandler) Reload(c *fiber.Ctx) error {
	room, err := h.reload()
	if err != nil {
		h.log.Error("Configuration reload failed", zap.Error(err))
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	h.log.Info("Configuration reload queued", zap.String("room", room))
	return c.JSON(fiber.Map{"status": "reload queued", "room": room})
}
