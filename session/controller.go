// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/danielhkuo/qwirl/cache"
	"github.com/danielhkuo/qwirl/models"
	"github.com/danielhkuo/qwirl/sessionsync"
)

var (
	ErrNoNewQuestions = errors.New("no new questions")
	ErrEmptyComment   = errors.New("comment cannot be empty")
)

// Mode is the controller's navigation mode. A single enum instead of
// independent flags, so "reviewing while answering new" is unrepresentable.
type Mode int

const (
	// ModeAnswering is the default flow through unanswered items.
	ModeAnswering Mode = iota

	// ModeReviewing is the read-only re-browse of acted-on items after
	// completion. Votes and skips are no-ops in this mode.
	ModeReviewing

	// ModeAnsweringNew is ModeAnswering entered at the first item added
	// after a prior completion.
	ModeAnsweringNew
)

func (m Mode) String() string {
	switch m {
	case ModeReviewing:
		return "reviewing"
	case ModeAnsweringNew:
		return "answering_new"
	default:
		return "answering"
	}
}

// ActionKind tags what the primary call-to-action will do when executed.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionSkip
	ActionNext
	ActionDone
	ActionFinish
)

// Action describes the primary CTA: the kind drives Advance, the label is
// what the button should say. Both come from one derivation so the label
// can never disagree with the behavior.
type Action struct {
	Kind    ActionKind
	Label   string
	Enabled bool
}

// Fetcher is the read path for the questionnaire+session aggregate.
// *client.Client satisfies it.
type Fetcher interface {
	GetQwirl(ctx context.Context, ownerUsername string) (*models.SessionView, error)
}

// DefaultMaxSkipped is the skip budget when Config leaves it zero.
const DefaultMaxSkipped = 3

type Config struct {
	// MaxSkipped is the most items a viewer may skip and still have the
	// session auto-finish on the last item.
	MaxSkipped int
}

func (c Config) maxSkipped() int {
	if c.MaxSkipped > 0 {
		return c.MaxSkipped
	}
	return DefaultMaxSkipped
}

// State is the snapshot the presentation layer renders from.
type State struct {
	Position        int
	Mode            Mode
	Item            *models.QwirlItem
	Completed       bool
	NewCount        int
	AnsweredCount   int
	SkippedCount    int
	UnansweredCount int
	Wavelength      *float64
	Pending         bool
	Action          Action
	Comment         CommentDraft
}

// Controller drives one viewer through answering one owner's qwirl. It
// composes derivation, the comment draft, and the optimistic mutation
// layer into the navigate/answer/skip/finish state machine.
//
// The only local state is the current position, the mode, and the comment
// draft; everything else is derived from the cached aggregate on demand.
type Controller struct {
	cfg   Config
	store cache.Store
	fetch Fetcher
	mut   *sessionsync.Mutator
	key   string

	mu          sync.Mutex
	pos         int
	mode        Mode
	initialized bool
	draft       CommentDraft
}

func NewController(cfg Config, store cache.Store, fetch Fetcher, api sessionsync.API, ownerUsername, sessionID string) *Controller {
	return &Controller{
		cfg:   cfg,
		store: store,
		fetch: fetch,
		mut:   sessionsync.NewMutator(store, api, ownerUsername, sessionID),
		key:   ownerUsername,
	}
}

// SetSessionID points the mutation layer at a session started after the
// controller was constructed.
func (c *Controller) SetSessionID(id string) { c.mut.SetSessionID(id) }

// Load fetches the aggregate and writes it into the cache. The fetch is
// registered with the cache when the store supports it, so an optimistic
// write can cancel it mid-flight.
//
// Position initialization runs exactly once per controller: a refetch must
// not yank the viewer away from wherever they have navigated to.
func (c *Controller) Load(ctx context.Context) error {
	fetchCtx := ctx
	if reg, ok := c.store.(cache.FetchRegistry); ok {
		fetchCtx = reg.RegisterFetch(ctx, c.key)
	}

	view, err := c.fetch.GetQwirl(fetchCtx, c.key)
	if err != nil {
		return err
	}
	SortItems(view.Items)
	if view.SessionID != "" {
		c.mut.SetSessionID(view.SessionID)
	}
	c.store.Write(c.key, view)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.initPosition(view)
	c.syncDraftLocked(view)
	return nil
}

func (c *Controller) initPosition(view *models.SessionView) {
	if c.initialized || len(view.Items) == 0 {
		return
	}
	if p := FirstUnanswered(view.Items); p > 0 {
		c.pos = p
	} else {
		d := Derive(view)
		c.pos = min(d.LastRespondedPosition+1, LastPosition(view.Items))
	}
	c.initialized = true
}

func (c *Controller) current() *models.SessionView {
	view, ok := c.store.Snapshot(c.key)
	if !ok {
		return nil
	}
	return view
}

func (c *Controller) syncDraftLocked(view *models.SessionView) {
	if view == nil {
		return
	}
	item := ItemAt(view.Items, c.pos)
	if item == nil {
		c.draft.Sync("", "")
		return
	}
	existing := ""
	if item.UserResponse != nil && item.UserResponse.Comment != nil {
		existing = *item.UserResponse.Comment
	}
	c.draft.Sync(item.ID, existing)
}

// State returns the render snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := State{
		Position: c.pos,
		Mode:     c.mode,
		Pending:  c.mut.Pending(),
		Comment:  c.draft,
	}

	view := c.current()
	if view == nil {
		return st
	}

	d := Derive(view)
	st.Completed = d.Completed
	st.NewCount = d.NewCount
	st.AnsweredCount = d.AnsweredCount
	st.SkippedCount = d.SkippedCount
	st.UnansweredCount = d.UnansweredCount
	st.Wavelength = view.Wavelength
	st.Item = ItemAt(view.Items, c.pos)
	st.Action = c.actionLocked(view, d)
	return st
}

// PrimaryAction returns the CTA descriptor for the current state.
func (c *Controller) PrimaryAction() Action {
	c.mu.Lock()
	defer c.mu.Unlock()

	view := c.current()
	if view == nil {
		return Action{Kind: ActionNone}
	}
	return c.actionLocked(view, Derive(view))
}

func (c *Controller) actionLocked(view *models.SessionView, d Derived) Action {
	item := ItemAt(view.Items, c.pos)
	if item == nil {
		return Action{Kind: ActionNone}
	}
	last := item.Position == LastPosition(view.Items)

	if c.mode == ModeReviewing {
		if last {
			return Action{Kind: ActionDone, Label: "Done", Enabled: true}
		}
		return Action{Kind: ActionNext, Label: "Next", Enabled: true}
	}

	acted := item.UserResponse != nil
	if acted {
		if !last {
			return Action{Kind: ActionNext, Label: "Next", Enabled: true}
		}
		if d.SkippedCount <= c.cfg.maxSkipped() {
			return Action{Kind: ActionFinish, Label: "Finish", Enabled: true}
		}
		// Too many skips: finishing is forfeited until some are answered.
		return Action{Kind: ActionFinish, Label: "Finish", Enabled: false}
	}

	return Action{Kind: ActionSkip, Label: "Skip", Enabled: true}
}

// Vote submits an answer for the current item. It is a no-op in review
// mode, when the item is already answered (answers lock on first
// selection), or when the answer is not one of the item's options.
func (c *Controller) Vote(ctx context.Context, answer string) error {
	c.mu.Lock()
	if c.mode == ModeReviewing {
		c.mu.Unlock()
		return nil
	}
	view := c.current()
	if view == nil {
		c.mu.Unlock()
		return nil
	}
	item := ItemAt(view.Items, c.pos)
	if item == nil {
		c.mu.Unlock()
		return nil
	}
	if item.UserResponse != nil && item.UserResponse.SelectedAnswer != nil {
		c.mu.Unlock()
		return nil
	}
	valid := false
	for _, opt := range item.Options {
		if opt == answer {
			valid = true
			break
		}
	}
	if !valid {
		c.mu.Unlock()
		return nil
	}
	itemID := item.ID
	c.mu.Unlock()

	return c.mut.SubmitAnswer(ctx, itemID, &answer)
}

// Skip records an explicit non-answer for the current item. On the last
// item it finishes the session automatically, unless this skip would blow
// the skip budget, in which case the session stays open. Elsewhere it
// advances.
func (c *Controller) Skip(ctx context.Context) error {
	c.mu.Lock()
	if c.mode == ModeReviewing {
		c.mu.Unlock()
		return nil
	}
	view := c.current()
	if view == nil {
		c.mu.Unlock()
		return nil
	}
	item := ItemAt(view.Items, c.pos)
	if item == nil {
		c.mu.Unlock()
		return nil
	}

	d := Derive(view)
	skips := d.SkippedCount
	if !d.SkippedIDs[item.ID] {
		skips++ // this skip
	}
	last := item.Position == LastPosition(view.Items)
	itemID := item.ID
	c.mu.Unlock()

	if err := c.mut.SubmitAnswer(ctx, itemID, nil); err != nil {
		return err
	}

	if last {
		if skips <= c.cfg.maxSkipped() {
			return c.Finish(ctx)
		}
		return nil
	}

	c.mu.Lock()
	view = c.current()
	if view != nil {
		if next := NextPosition(view.Items, c.pos); next > 0 {
			c.pos = next
		}
		c.syncDraftLocked(view)
	}
	c.mu.Unlock()
	return nil
}

// Previous moves back one position. In review mode position 1 is the
// floor; in answering mode it scans for the nearest lower position with an
// item, which handles sparse position sequences.
func (c *Controller) Previous() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode == ModeReviewing {
		if c.pos > 1 {
			c.pos--
			c.syncDraftLocked(c.current())
		}
		return
	}

	view := c.current()
	if view == nil {
		return
	}
	if p := PreviousPosition(view.Items, c.pos); p > 0 {
		c.pos = p
		c.syncDraftLocked(view)
	}
}

// Advance executes the current primary action. The renderer shows the
// label from PrimaryAction; Advance performs exactly that action.
func (c *Controller) Advance(ctx context.Context) error {
	c.mu.Lock()
	view := c.current()
	if view == nil {
		c.mu.Unlock()
		return nil
	}
	action := c.actionLocked(view, Derive(view))
	if !action.Enabled {
		c.mu.Unlock()
		return nil
	}

	switch action.Kind {
	case ActionNext:
		if next := NextPosition(view.Items, c.pos); next > 0 {
			c.pos = next
			c.syncDraftLocked(view)
		}
		c.mu.Unlock()
		return nil

	case ActionDone:
		d := Derive(view)
		c.mode = ModeAnswering
		c.pos = min(LastPosition(view.Items), d.LastRespondedPosition)
		if c.pos < 1 {
			c.pos = 1
		}
		c.syncDraftLocked(view)
		c.mu.Unlock()
		return nil

	case ActionSkip:
		c.mu.Unlock()
		return c.Skip(ctx)

	case ActionFinish:
		c.mu.Unlock()
		return c.Finish(ctx)
	}

	c.mu.Unlock()
	return nil
}

// StartReview enters read-only review at the first item.
func (c *Controller) StartReview() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = ModeReviewing
	c.pos = 1
	c.syncDraftLocked(c.current())
}

// StartAnsweringNew jumps to the first item added since the viewer's last
// response. Returns ErrNoNewQuestions when there is nothing new.
func (c *Controller) StartAnsweringNew() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	view := c.current()
	if view == nil {
		return ErrNoNewQuestions
	}
	d := Derive(view)
	if d.FirstNewPosition > LastPosition(view.Items) {
		return ErrNoNewQuestions
	}
	c.mode = ModeAnsweringNew
	c.pos = d.FirstNewPosition
	c.syncDraftLocked(view)
	return nil
}

// OpenComment shows the comment editor for the current item.
func (c *Controller) OpenComment() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Open()
}

// CancelComment discards comment edits.
func (c *Controller) CancelComment() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Cancel()
}

// SetCommentText replaces the draft buffer.
func (c *Controller) SetCommentText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Text = text
}

// SaveComment persists the draft for the current item. An empty-after-trim
// draft is rejected locally with ErrEmptyComment, before any network call.
func (c *Controller) SaveComment(ctx context.Context) error {
	c.mu.Lock()
	view := c.current()
	if view == nil {
		c.mu.Unlock()
		return nil
	}
	item := ItemAt(view.Items, c.pos)
	if item == nil {
		c.mu.Unlock()
		return nil
	}
	if !c.draft.CanSave() {
		c.mu.Unlock()
		return ErrEmptyComment
	}
	text := strings.TrimSpace(c.draft.Text)
	itemID := item.ID
	c.mu.Unlock()

	if err := c.mut.SaveComment(ctx, itemID, text); err != nil {
		return err
	}

	c.mu.Lock()
	c.draft.Sync(itemID, text)
	c.mu.Unlock()
	return nil
}

// Finish completes the session and refetches the aggregate so the
// server-computed wavelength becomes visible.
func (c *Controller) Finish(ctx context.Context) error {
	if _, err := c.mut.FinishSession(ctx); err != nil {
		return err
	}
	return c.Load(ctx)
}
