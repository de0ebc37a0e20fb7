// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/velachat/vela-tui/internal/api"
	"github.com/velachat/vela-tui/internal/history"
	"github.com/velachat/vela-tui/internal/model"
)

// DefaultReconcileDelay is the grace period between stream end and the
// reconcile fetch, giving the backend time to persist its canonical
// record.
const DefaultReconcileDelay = time.Second

// ErrRoundInFlight rejects a submission while the previous assistant
// turn has not reached a terminal state.
var ErrRoundInFlight = model.ErrTurnInFlight

// Backend is the slice of the API client the controller needs.
type Backend interface {
	SendChat(ctx context.Context, req api.ChatRequest) (io.ReadCloser, error)
	StopChat(ctx context.Context, conversationID string) error
	GetConversation(ctx context.Context, id string) (*api.ConversationDetail, error)
}

// cancelManager guards the in-flight round's cancel function and the
// conversation it is streaming into. It must be held by pointer: the TUI
// update loop copies its model on every update.
type cancelManager struct {
	mu         sync.Mutex
	cancelFunc context.CancelFunc
	conv       *model.Conversation
}

// set stores the cancel function and conversation for the current round.
func (cm *cancelManager) set(fn context.CancelFunc, conv *model.Conversation) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.cancelFunc = fn
	cm.conv = conv
}

// cancel invokes and clears the stored function, returning the
// conversation the round was streaming into, nil when none was in
// flight. Safe to call with none set, and safe to call repeatedly.
func (cm *cancelManager) cancel() *model.Conversation {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cancelFunc == nil {
		return nil
	}
	cm.cancelFunc()
	cm.cancelFunc = nil
	conv := cm.conv
	cm.conv = nil
	return conv
}

// Controller orchestrates one user→assistant round: window building,
// store mutation, the streaming request, assembly, cancellation, and the
// post-stream reconcile.
type Controller struct {
	backend   Backend
	store     *model.Store
	formatter *history.Formatter
	log       *zap.Logger

	cancelMgr cancelManager

	// stopLimiter caps best-effort stop notifications so a key held down
	// does not hammer the backend.
	stopLimiter *rate.Limiter

	reconcileDelay time.Duration
	modelID        string
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
			c.formatter = history.NewFormatter(log)
		}
	}
}

// WithReconcileDelay overrides the post-stream reconcile grace period.
// Zero means reconcile immediately; tests use this.
func WithReconcileDelay(d time.Duration) Option {
	return func(c *Controller) { c.reconcileDelay = d }
}

// WithModelID sets the default model sent with chat requests.
func WithModelID(id string) Option {
	return func(c *Controller) { c.modelID = id }
}

// New creates a controller over the given backend and store.
func New(backend Backend, store *model.Store, opts ...Option) *Controller {
	c := &Controller{
		backend:        backend,
		store:          store,
		formatter:      history.NewFormatter(nil),
		log:            zap.NewNop(),
		stopLimiter:    rate.NewLimiter(rate.Every(time.Second), 2),
		reconcileDelay: DefaultReconcileDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SubmitRequest carries one user message and its selections.
type SubmitRequest struct {
	ConversationID   string // empty means the active conversation
	Message          string
	KnowledgeBaseIDs []string
	ToolServerIDs    []string
	UseWebSearch     bool
	ModelID          string // empty means the controller default
}

// Submit runs steps one through five of a round: window building, store
// mutation, and the streaming POST. It returns a live Round whose events
// the caller drives; ErrRoundInFlight if the previous assistant turn is
// still streaming.
func (c *Controller) Submit(ctx context.Context, req SubmitRequest) (*Round, error) {
	conv := c.conversation(req.ConversationID)
	if conv == nil {
		return nil, model.ErrConversationNotFound
	}

	window := historyWindow(conv.Turns)

	userTurn := model.NewUserTurn(req.Message)
	userTurn.KnowledgeBaseIDs = req.KnowledgeBaseIDs
	userTurn.ToolServerIDs = req.ToolServerIDs
	userTurn.UseWebSearch = req.UseWebSearch
	if err := c.store.AppendUserTurn(conv.LocalID, userTurn); err != nil {
		return nil, err
	}

	liveTurn, err := c.store.StartAssistantTurn(conv.LocalID)
	if err != nil {
		return nil, err
	}

	streamCtx, cancel := context.WithCancel(ctx)
	c.cancelMgr.set(cancel, conv)

	chatReq := c.buildChatRequest(conv, req, window)
	body, err := c.backend.SendChat(streamCtx, chatReq)
	if err != nil {
		// The turn was already started; settle it as failed so the
		// conversation accepts the next submission.
		round := newRound(streamCtx, c, conv, liveTurn, nil)
		round.Complete(err)
		return nil, err
	}

	return newRound(streamCtx, c, conv, liveTurn, body), nil
}

// buildChatRequest assembles the wire request for one submission.
func (c *Controller) buildChatRequest(conv *model.Conversation, req SubmitRequest, window []api.ChatMessage) api.ChatRequest {
	chatReq := api.ChatRequest{
		Message:          req.Message,
		History:          window,
		KnowledgeBaseIDs: req.KnowledgeBaseIDs,
		MCPServerIDs:     req.ToolServerIDs,
		UseTools:         len(req.ToolServerIDs) > 0,
		UseWebSearch:     req.UseWebSearch,
	}

	modelID := req.ModelID
	if modelID == "" {
		modelID = c.modelID
	}
	if modelID != "" {
		chatReq.ModelID = &modelID
	}

	if conv.Promoted() {
		serverID := conv.ServerID
		chatReq.ConversationID = &serverID
	} else {
		// First round of a local conversation: the backend creates the
		// record and announces its id on the stream.
		chatReq.ConversationTitle = conv.Title
	}
	return chatReq
}

// Stop cancels the in-flight round and fires the best-effort server-side
// stop notification for the conversation that round was streaming into.
// Cancellation is synchronous; the notification runs on its own
// goroutine so callers on the UI loop never wait on the network.
// Idempotent: with no round in flight it does nothing.
func (c *Controller) Stop(ctx context.Context) {
	conv := c.cancelMgr.cancel()
	if conv == nil || !conv.Promoted() {
		return
	}
	if !c.stopLimiter.Allow() {
		return
	}
	serverID := conv.ServerID
	go func() {
		// Result ignored: the local cancellation already settled the turn.
		if err := c.backend.StopChat(ctx, serverID); err != nil {
			c.log.Warn("stop notification failed",
				zap.String("conversation_id", serverID),
				zap.Error(err))
		}
	}()
}

// Reconcile fetches the backend's canonical record and replaces the
// local turn list. The store refuses the swap while a turn is streaming,
// which makes a late reconcile harmless.
func (c *Controller) Reconcile(ctx context.Context, conversationID string) error {
	conv := c.store.Get(conversationID)
	if conv == nil || !conv.Promoted() {
		return model.ErrConversationNotFound
	}

	detail, err := c.backend.GetConversation(ctx, conv.ServerID)
	if err != nil {
		return err
	}
	turns := c.formatter.Turns(detail)
	return c.store.ReconcileFromServer(conv.LocalID, detail.Title, turns)
}

// scheduleReconcile runs Reconcile after the grace delay. Errors are
// logged only; reconciliation is advisory.
func (c *Controller) scheduleReconcile(conversationID string) {
	run := func() {
		ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
		defer cancel()
		if err := c.Reconcile(ctx, conversationID); err != nil &&
			!errors.Is(err, model.ErrConversationNotFound) {
			c.log.Warn("reconcile failed",
				zap.String("conversation_id", conversationID),
				zap.Error(err))
		}
	}
	if c.reconcileDelay <= 0 {
		run()
		return
	}
	time.AfterFunc(c.reconcileDelay, run)
}

// conversation resolves the submission target: an explicit id, or the
// active conversation.
func (c *Controller) conversation(id string) *model.Conversation {
	if id != "" {
		return c.store.Get(id)
	}
	return c.store.Active()
}

// Store exposes the conversation store for the view layer.
func (c *Controller) Store() *model.Store {
	return c.store
}
