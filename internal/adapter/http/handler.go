// Package httpadapter exposes the simulation over a JSON API: world and
// schedule queries, clock control, and the scene machine.
package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"townsim/internal/app/game"
	"townsim/internal/app/ports"
	"townsim/internal/app/scenes"
	"townsim/internal/catalog"
	"townsim/internal/domain/scene"
	"townsim/internal/domain/schedule"
)

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

type Handler struct {
	Game     *game.UseCase
	Resolver *scenes.Resolver
	Events   ports.EventRepository
	KPI      kpiSnapshotProvider
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())

	api := s.Group("/api")
	api.GET("/world", h.world)
	api.GET("/clock", h.clock)
	api.POST("/clock/advance", h.advanceClock)
	api.GET("/npc", h.listNPCs)
	api.GET("/npc/:id/schedule", h.npcSchedule)
	api.GET("/npc/:id/location", h.npcLocation)
	api.POST("/scene/resolve", h.resolveScene)
	api.POST("/scene/choose", h.chooseScene)
	api.GET("/replay", h.replay)

	s.GET("/ops/kpi", h.kpi)
}

func (h Handler) world(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, h.Game.Graph().Snapshot())
}

func (h Handler) clock(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, map[string]any{"now": h.Game.Now().Format(time.RFC3339)})
}

type advanceClockRequest struct {
	Minutes int `json:"minutes"`
}

func (h Handler) advanceClock(c context.Context, ctx *app.RequestContext) {
	var body advanceClockRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if body.Minutes <= 0 {
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "minutes must be positive")
		return
	}

	events, err := h.Game.AdvanceClock(c, time.Duration(body.Minutes)*time.Minute)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{
		"now":    h.Game.Now().Format(time.RFC3339),
		"events": eventViews(events),
	})
}

type npcView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	LocationID string `json:"location_id"`
	Available  bool   `json:"available"`
}

func (h Handler) listNPCs(_ context.Context, ctx *app.RequestContext) {
	roster := h.Game.NPCs()
	out := make([]npcView, 0, len(roster))
	for _, n := range roster {
		out = append(out, npcView{
			ID:         n.ID,
			Name:       n.Name,
			LocationID: n.LocationID,
			Available:  n.Available(),
		})
	}
	ctx.JSON(consts.StatusOK, map[string]any{"npcs": out})
}

type slotView struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Activity   string `json:"activity"`
	LocationID string `json:"location_id"`
	RuleID     string `json:"rule_id,omitempty"`
}

func (h Handler) npcSchedule(_ context.Context, ctx *app.RequestContext) {
	id := string(ctx.Param("id"))
	slots, err := h.Game.WeekSchedule(id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	out := make([]slotView, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotView{
			From:       s.From.Format(time.RFC3339),
			To:         s.To.Format(time.RFC3339),
			Activity:   s.Activity,
			LocationID: s.LocationID,
			RuleID:     s.RuleID,
		})
	}
	ctx.JSON(consts.StatusOK, map[string]any{"npc_id": id, "slots": out})
}

func (h Handler) npcLocation(_ context.Context, ctx *app.RequestContext) {
	id := string(ctx.Param("id"))
	at := h.Game.Now()
	if q := string(ctx.Query("at")); q != "" {
		parsed, err := time.Parse(time.RFC3339, q)
		if err != nil {
			writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "at must be RFC3339")
			return
		}
		at = parsed
	}

	loc, err := h.Game.LocationAt(id, at)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{
		"npc_id":      id,
		"at":          at.Format(time.RFC3339),
		"location_id": loc,
	})
}

type resolveSceneRequest struct {
	LocationID string `json:"location_id"`
}

func (h Handler) resolveScene(c context.Context, ctx *app.RequestContext) {
	var body resolveSceneRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if body.LocationID == "" {
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "location_id is required")
		return
	}

	active, err := h.Resolver.Resolve(c, h.Game.SceneState(body.LocationID))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, activeView(active))
}

type chooseSceneRequest struct {
	LocationID string `json:"location_id"`
	ChoiceID   string `json:"choice_id"`
}

func (h Handler) chooseScene(c context.Context, ctx *app.RequestContext) {
	var body chooseSceneRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if body.ChoiceID == "" {
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "choice_id is required")
		return
	}

	next, err := h.Resolver.Choose(c, h.Game.SceneState(body.LocationID), body.ChoiceID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	if next == nil {
		ctx.JSON(consts.StatusOK, map[string]any{"active": false})
		return
	}
	ctx.JSON(consts.StatusOK, activeView(next))
}

func (h Handler) replay(c context.Context, ctx *app.RequestContext) {
	if h.Events == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "event log not configured")
		return
	}
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	sessionID := string(ctx.Query("session_id"))

	events, err := h.Events.ListBySessionID(c, sessionID, limit)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{"events": eventViews(events)})
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

type choiceView struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func activeView(a *scenes.Active) map[string]any {
	choices := make([]choiceView, 0, len(a.Scene.Choices))
	for _, ch := range a.Scene.Choices {
		choices = append(choices, choiceView{ID: ch.ID, Label: ch.Label})
	}
	return map[string]any{
		"active":      true,
		"instance_id": a.InstanceID,
		"scene_id":    a.Scene.ID,
		"label":       a.Scene.Label,
		"tags":        a.Scene.Tags,
		"choices":     choices,
		"resolved_at": a.ResolvedAt.Format(time.RFC3339),
	}
}

type eventView struct {
	Kind       string         `json:"kind"`
	OccurredAt string         `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
}

func eventViews(events []ports.EventRecord) []eventView {
	out := make([]eventView, 0, len(events))
	for _, ev := range events {
		out = append(out, eventView{
			Kind:       ev.Kind,
			OccurredAt: ev.OccurredAt.Format(time.RFC3339),
			Payload:    ev.Payload,
		})
	}
	return out
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, game.ErrUnknownNPC):
		writeErrorBody(ctx, consts.StatusNotFound, "unknown_npc", err.Error())
	case errors.Is(err, scenes.ErrNoActiveScene):
		writeErrorBody(ctx, consts.StatusConflict, "no_active_scene", err.Error())
	case errors.Is(err, scenes.ErrUnknownChoice):
		writeErrorBody(ctx, consts.StatusBadRequest, "unknown_choice", err.Error())
	case errors.Is(err, scene.ErrInvalidScene),
		errors.Is(err, schedule.ErrInvalidRule),
		errors.Is(err, catalog.ErrInvalidCatalog):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, schedule.ErrBrokenTimeline):
		writeErrorBody(ctx, consts.StatusInternalServerError, "broken_timeline", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
