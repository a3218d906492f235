// Package tui implements the interactive browser for collections and
// references. List state is server-owned: every dialog dismissal
// refetches the visible list, and stale responses are discarded by
// generation counter.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Ref-Hub/refhub-cli/internal/api"
	"github.com/Ref-Hub/refhub-cli/internal/share"
)

// Pane identifies which list currently has focus
type Pane int

// Pane constants
const (
	// PaneCollections is the collection list
	PaneCollections Pane = iota
	// PaneReferences is the reference list of the selected collection
	PaneReferences
)

// Dialog identifies the open modal, if any
type Dialog int

// Dialog constants
const (
	// DialogNone means no modal is open
	DialogNone Dialog = iota
	// DialogNewCollection prompts for a new collection title
	DialogNewCollection
	// DialogRenameCollection prompts for a replacement title
	DialogRenameCollection
	// DialogSearch prompts for a search term
	DialogSearch
	// DialogConfirmDelete is the y/n confirmation before a delete
	DialogConfirmDelete
	// DialogHelp is the key reference overlay
	DialogHelp
)

// Model represents the browser state
type Model struct {
	client    *api.Client
	userEmail string

	// List state
	pane        Pane
	collections []api.Collection
	colCursor   int
	colTotal    int
	references  []api.Reference
	refCursor   int
	refTotal    int
	openColID   string
	openColIdx  int

	// Query state sent with every list fetch
	page     int
	pageSize int
	sort     string
	search   string

	// Dialog state
	dialog    Dialog
	input     textinput.Model
	dialogErr string
	pending   bool

	// prevDialogOpen is the dialog-open flag as of the previous
	// Update. A true-to-false transition is the single trigger for a
	// list refetch, whether the dialog committed or was cancelled.
	prevDialogOpen bool

	// Fetch generations. A response tagged with an older generation
	// than the current one lost a race and is dropped.
	colGen int
	refGen int

	loading   bool
	spinner   spinner.Model
	lastError string
	width     int
	height    int
	ready     bool
	quitting  bool
	styles    Styles
}

// NewModel creates a browser model for the given client and session user
func NewModel(client *api.Client, userEmail string) Model {
	styles := DefaultStyles()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Status

	ti := textinput.New()
	ti.CharLimit = 120

	return Model{
		client:    client,
		userEmail: userEmail,
		pane:      PaneCollections,
		page:      1,
		pageSize:  20,
		sort:      "updatedAt",
		loading:   true,
		spinner:   sp,
		input:     ti,
		styles:    styles,
	}
}

// Init starts the spinner and issues the first collection fetch
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, fetchCollections(m.client, m.colGen, m.listParams()))
}

// Update handles messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		var km tea.Model
		km, cmd = m.handleKeyPress(msg)
		m = km.(Model)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)

	case CollectionsLoadedMsg:
		if msg.Gen != m.colGen {
			// A newer fetch is already in flight or landed.
			break
		}
		m.loading = false
		if msg.Err != nil {
			m.lastError = msg.Err.Error()
			break
		}
		m.lastError = ""
		m.collections = msg.Collections
		m.colTotal = msg.Total
		if m.colCursor >= len(m.collections) {
			m.colCursor = max(0, len(m.collections)-1)
		}

	case ReferencesLoadedMsg:
		if msg.Gen != m.refGen || msg.CollectionID != m.openColID {
			break
		}
		m.loading = false
		if msg.Err != nil {
			m.lastError = msg.Err.Error()
			break
		}
		m.lastError = ""
		m.references = msg.References
		m.refTotal = msg.Total
		if m.refCursor >= len(m.references) {
			m.refCursor = max(0, len(m.references)-1)
		}

	case MutationDoneMsg:
		m.pending = false
		if msg.Err != nil {
			// The dialog stays open showing the failure, so no
			// close edge fires and the list is left alone.
			m.dialogErr = msg.Err.Error()
			break
		}
		m.dialogErr = ""
		m.dialog = DialogNone
	}

	// Edge detection runs after every message so that each dialog
	// dismissal, commit and cancel alike, refetches exactly once.
	return m.syncDialogEdge(cmd)
}

// syncDialogEdge compares the dialog-open flag against the previous
// Update and issues one list refetch on the open-to-closed edge.
func (m Model) syncDialogEdge(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	open := m.dialog != DialogNone
	if m.prevDialogOpen && !open {
		m.prevDialogOpen = open
		refetch, next := m.refetchVisible()
		return next, tea.Batch(cmd, refetch)
	}
	m.prevDialogOpen = open
	return m, cmd
}

// refetchVisible reissues the fetch for whichever list is on screen,
// carrying the current page, sort, and search.
func (m Model) refetchVisible() (tea.Cmd, Model) {
	m.loading = true
	if m.pane == PaneReferences {
		m.refGen++
		return fetchReferences(m.client, m.refGen, m.openColID, m.listParams()), m
	}
	m.colGen++
	return fetchCollections(m.client, m.colGen, m.listParams()), m
}

func (m Model) listParams() api.ListParams {
	return api.ListParams{
		Page:     m.page,
		PageSize: m.pageSize,
		Sort:     m.sort,
		Search:   m.search,
	}
}

// View renders the browser
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.quitting {
		return ""
	}

	switch m.dialog {
	case DialogNewCollection, DialogRenameCollection, DialogSearch:
		return m.renderInputDialog()
	case DialogConfirmDelete:
		return m.renderConfirm()
	case DialogHelp:
		return m.renderHelp()
	}

	if m.pane == PaneReferences {
		return m.renderReferences()
	}
	return m.renderCollections()
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.dialog != DialogNone {
		return m.handleDialogKey(msg)
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "?":
		m.dialog = DialogHelp

	case "up", "k":
		m.moveCursor(-1)

	case "down", "j":
		m.moveCursor(1)

	case "enter":
		if m.pane == PaneCollections && m.colCursor < len(m.collections) {
			col := m.collections[m.colCursor]
			m.pane = PaneReferences
			m.openColID = col.ID
			m.openColIdx = m.colCursor
			m.refCursor = 0
			m.references = nil
			m.refTotal = 0
			m.loading = true
			m.refGen++
			return m, fetchReferences(m.client, m.refGen, m.openColID, m.listParams())
		}

	case "esc", "backspace":
		if m.pane == PaneReferences {
			m.pane = PaneCollections
			m.openColID = ""
			m.loading = true
			m.colGen++
			return m, fetchCollections(m.client, m.colGen, m.listParams())
		}

	case "n":
		if m.pane == PaneCollections {
			m.openInput(DialogNewCollection, "Collection title", "")
		}

	case "r":
		if col, ok := m.selectedCollection(); ok && m.myRole(col).Can(share.ActionRename) {
			m.openInput(DialogRenameCollection, "New title", col.Title)
		}

	case "d":
		switch m.pane {
		case PaneCollections:
			if col, ok := m.selectedCollection(); ok && m.myRole(col).Can(share.ActionDelete) {
				m.dialog = DialogConfirmDelete
				m.dialogErr = ""
			}
		case PaneReferences:
			if m.refCursor < len(m.references) && m.openRole().Can(share.ActionEditRefs) {
				m.dialog = DialogConfirmDelete
				m.dialogErr = ""
			}
		}

	case "/":
		m.openInput(DialogSearch, "Search", m.search)

	case "s":
		m.sort = nextSort(m.sort)
		return m.refetchNow()

	case "[":
		if m.page > 1 {
			m.page--
			return m.refetchNow()
		}

	case "]":
		total := m.colTotal
		if m.pane == PaneReferences {
			total = m.refTotal
		}
		if m.page*m.pageSize < total {
			m.page++
			return m.refetchNow()
		}
	}

	return m, nil
}

// handleDialogKey handles input while a modal is open
func (m Model) handleDialogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.dialog == DialogHelp {
		m.dialog = DialogNone
		// Help is a passive overlay, not a list mutation. Closing it
		// must not refetch, so the edge flag is reset by hand.
		m.prevDialogOpen = false
		return m, nil
	}

	if m.dialog == DialogConfirmDelete {
		switch msg.String() {
		case "y", "enter":
			if m.pending {
				return m, nil
			}
			m.pending = true
			cmd := m.deleteSelected()
			return m, cmd
		case "n", "esc":
			// Cancelling still counts as a dismissal, so the close
			// edge refetches the list.
			m.dialog = DialogNone
			m.pending = false
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.dialog = DialogNone
		m.pending = false
		m.input.Blur()

	case "enter":
		if m.pending {
			return m, nil
		}
		return m.commitInput()

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

// commitInput submits the open input dialog. The dialog stays open
// until the mutation resolves; only success closes it.
func (m Model) commitInput() (tea.Model, tea.Cmd) {
	value := m.input.Value()

	switch m.dialog {
	case DialogSearch:
		// Search has no server mutation. The new term is applied and
		// the dialog closes, so the close edge fetches with it.
		m.search = value
		m.page = 1
		m.dialog = DialogNone
		return m, nil

	case DialogNewCollection:
		if value == "" {
			m.dialogErr = "title is required"
			return m, nil
		}
		m.pending = true
		client := m.client
		return m, func() tea.Msg {
			_, err := client.CreateCollection(context.Background(), value)
			return MutationDoneMsg{Err: err}
		}

	case DialogRenameCollection:
		col, ok := m.selectedCollection()
		if !ok {
			m.dialog = DialogNone
			return m, nil
		}
		if value == "" {
			m.dialogErr = "title is required"
			return m, nil
		}
		m.pending = true
		client := m.client
		id := col.ID
		return m, func() tea.Msg {
			_, err := client.RenameCollection(context.Background(), id, value)
			return MutationDoneMsg{Err: err}
		}
	}

	m.dialog = DialogNone
	return m, nil
}

// deleteSelected issues the delete for whichever row is confirmed
func (m *Model) deleteSelected() tea.Cmd {
	client := m.client

	if m.pane == PaneReferences {
		if m.refCursor >= len(m.references) {
			m.pending = false
			m.dialog = DialogNone
			return nil
		}
		id := m.references[m.refCursor].ID
		return func() tea.Msg {
			err := client.DeleteReferences(context.Background(), []string{id})
			return MutationDoneMsg{Err: err}
		}
	}

	col, ok := m.selectedCollection()
	if !ok {
		m.pending = false
		m.dialog = DialogNone
		return nil
	}
	id := col.ID
	return func() tea.Msg {
		err := client.DeleteCollections(context.Background(), []string{id})
		return MutationDoneMsg{Err: err}
	}
}

func (m *Model) openInput(kind Dialog, placeholder, value string) {
	m.dialog = kind
	m.dialogErr = ""
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *Model) moveCursor(delta int) {
	if m.pane == PaneReferences {
		m.refCursor = clamp(m.refCursor+delta, 0, max(0, len(m.references)-1))
		return
	}
	m.colCursor = clamp(m.colCursor+delta, 0, max(0, len(m.collections)-1))
}

func (m Model) refetchNow() (tea.Model, tea.Cmd) {
	cmd, next := m.refetchVisible()
	return next, cmd
}

func (m Model) selectedCollection() (*api.Collection, bool) {
	idx := m.colCursor
	if m.pane == PaneReferences {
		idx = m.openColIdx
	}
	if idx < 0 || idx >= len(m.collections) {
		return nil, false
	}
	return &m.collections[idx], true
}

func (m Model) myRole(col *api.Collection) share.Role {
	return share.Resolve(m.userEmail, col)
}

func (m Model) openRole() share.Role {
	col, ok := m.selectedCollection()
	if !ok {
		return share.RoleNone
	}
	return m.myRole(col)
}

func nextSort(current string) string {
	switch current {
	case "updatedAt":
		return "createdAt"
	case "createdAt":
		return "title"
	default:
		return "updatedAt"
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Messages

// CollectionsLoadedMsg carries a collection list response
type CollectionsLoadedMsg struct {
	Gen         int
	Collections []api.Collection
	Total       int
	Err         error
}

// ReferencesLoadedMsg carries a reference list response
type ReferencesLoadedMsg struct {
	Gen          int
	CollectionID string
	References   []api.Reference
	Total        int
	Err          error
}

// MutationDoneMsg reports the outcome of a create, rename, or delete
type MutationDoneMsg struct {
	Err error
}

// Commands

func fetchCollections(client *api.Client, gen int, params api.ListParams) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		resp, err := client.ListCollections(ctx, params)
		if err != nil {
			return CollectionsLoadedMsg{Gen: gen, Err: err}
		}
		return CollectionsLoadedMsg{Gen: gen, Collections: resp.Collections, Total: resp.TotalCount}
	}
}

func fetchReferences(client *api.Client, gen int, collectionID string, params api.ListParams) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		resp, err := client.ListReferences(ctx, collectionID, params)
		if err != nil {
			return ReferencesLoadedMsg{Gen: gen, CollectionID: collectionID, Err: err}
		}
		return ReferencesLoadedMsg{Gen: gen, CollectionID: collectionID, References: resp.References, Total: resp.TotalCount}
	}
}
