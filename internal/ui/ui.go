// Package ui is the tview dashboard over the console core: a cases
// pane, an entity table with kind badges, a graph pane rendered from
// the view-model and an activity timeline. It consumes data the core
// hands it and owns no state of its own beyond the selected case.
package ui

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/ghostlock/console/internal/bus"
	"github.com/ghostlock/console/internal/cache"
	"github.com/ghostlock/console/internal/graph"
	"github.com/ghostlock/console/internal/model"
	"github.com/ghostlock/console/internal/timeline"
	"github.com/ghostlock/console/internal/transform"
)

// Remote is the slice of the API client the dashboard refreshes from.
type Remote interface {
	ListCases(ctx context.Context) ([]model.Case, error)
	ListEntities(ctx context.Context) ([]model.Entity, error)
	ListRelationships(ctx context.Context) ([]model.Relationship, error)
	ListTimeline(ctx context.Context, limit int) ([]model.TimelineEvent, error)
}

// App is the dashboard container.
type App struct {
	app    *tview.Application
	remote Remote
	cache  *cache.Snapshot
	orch   *transform.Orchestrator
	bus    bus.Bus
	logger *log.Logger

	casesList     *tview.List
	entitiesTable *tview.Table
	graphView     *tview.TextView
	timelineView  *tview.TextView
	statusBar     *tview.TextView

	// scopeCaseID restricts the entity table and graph pane; nil
	// means all cases.
	scopeCaseID *int64

	// Timeline events are fetched during refresh off the event
	// goroutine; draw only reads this cached copy.
	timelineMu     sync.Mutex
	timelineEvents []model.TimelineEvent
	timelineErr    error
}

// NewApp wires the dashboard widgets. b may be nil when no activity
// bus is configured.
func NewApp(remote Remote, snap *cache.Snapshot, orch *transform.Orchestrator, b bus.Bus, logger *log.Logger) *App {
	if logger == nil {
		logger = log.New(log.Writer(), "[ui] ", log.LstdFlags)
	}

	a := &App{
		app:    tview.NewApplication(),
		remote: remote,
		cache:  snap,
		orch:   orch,
		bus:    b,
		logger: logger,
	}
	a.build()
	return a
}

func (a *App) build() {
	a.casesList = tview.NewList().ShowSecondaryText(false)
	a.casesList.SetBorder(true).SetTitle(" Cases (a: all) ")

	a.entitiesTable = tview.NewTable().SetSelectable(true, false)
	a.entitiesTable.SetBorder(true).SetTitle(" Entities (t: transform) ")

	a.graphView = tview.NewTextView().SetDynamicColors(true)
	a.graphView.SetBorder(true).SetTitle(" Graph ")

	a.timelineView = tview.NewTextView().SetDynamicColors(true)
	a.timelineView.SetBorder(true).SetTitle(" Activity ")

	a.statusBar = tview.NewTextView().SetDynamicColors(true)
	a.statusBar.SetText("[#8a939f]r: refresh | t: run transform | a: all cases | q: quit")

	a.casesList.SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		cases := a.cache.Cases()
		if index < 0 || index >= len(cases) {
			return
		}
		id := cases[index].ID
		a.scopeCaseID = &id
		a.redraw()
	})

	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.casesList, 0, 1, true).
		AddItem(a.timelineView, 0, 1, false)

	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.entitiesTable, 0, 1, false).
		AddItem(a.graphView, 0, 1, false)

	body := tview.NewFlex().
		AddItem(left, 0, 1, true).
		AddItem(right, 0, 2, false)

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(body, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(root, true)
}

// Run fetches an initial snapshot and enters the event loop.
func (a *App) Run(ctx context.Context) error {
	if err := a.refresh(ctx); err != nil {
		return err
	}
	a.redraw()

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'q':
			a.app.Stop()
			return nil
		case 'r':
			go a.refreshAndRedraw(ctx)
			return nil
		case 'a':
			a.scopeCaseID = nil
			a.redraw()
			return nil
		case 't':
			go a.transformSelected(ctx)
			return nil
		}
		return event
	})

	go func() {
		<-ctx.Done()
		a.app.Stop()
	}()

	if a.bus != nil {
		go func() {
			hctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			defer cancel()
			if err := a.bus.HealthCheck(hctx); err != nil {
				a.logger.Printf("activity bus unavailable: %v", err)
				a.setStatus("[#f59e0b]activity bus offline; transform outcomes will not be published")
			}
		}()
	}

	return a.app.Run()
}

// refresh pulls all collections. The graph pane needs a consistent
// joint snapshot, so every fetch completes before the cache is
// replaced. Timeline events are fetched here too; a timeline failure
// degrades that pane without failing the refresh.
func (a *App) refresh(ctx context.Context) error {
	cases, err := a.remote.ListCases(ctx)
	if err != nil {
		return err
	}
	entities, err := a.remote.ListEntities(ctx)
	if err != nil {
		return err
	}
	rels, err := a.remote.ListRelationships(ctx)
	if err != nil {
		return err
	}

	a.cache.SetCases(cases)
	a.cache.SetEntities(entities)
	a.cache.SetRelationships(rels)

	events, err := a.remote.ListTimeline(ctx, 25)
	a.timelineMu.Lock()
	a.timelineEvents = events
	a.timelineErr = err
	a.timelineMu.Unlock()
	return nil
}

func (a *App) refreshAndRedraw(ctx context.Context) {
	if err := a.refresh(ctx); err != nil {
		a.setStatus(fmt.Sprintf("[#ef4444]refresh failed: %v", err))
		return
	}
	a.app.QueueUpdateDraw(a.redraw)
}

func (a *App) redraw() {
	a.drawCases()
	a.drawEntities()
	a.drawGraph()
	a.drawTimeline()
}

func (a *App) drawCases() {
	a.casesList.Clear()
	for _, c := range a.cache.Cases() {
		a.casesList.AddItem(fmt.Sprintf("#%d %s", c.ID, c.Name), "", 0, nil)
	}
}

func (a *App) drawEntities() {
	a.entitiesTable.Clear()

	headers := []string{"ID", "Name", "Kind", "Case", "Status"}
	for col, h := range headers {
		a.entitiesTable.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(tcell.GetColor("#eab308")).
			SetSelectable(false))
	}

	row := 1
	for _, e := range a.cache.Entities() {
		if a.scopeCaseID != nil && e.CaseID != *a.scopeCaseID {
			continue
		}
		status := ""
		if a.orch != nil && a.orch.Busy(e.ID) {
			status = "running..."
		}
		style := graph.StyleForKind(e.Kind)
		a.entitiesTable.SetCell(row, 0, tview.NewTableCell(fmt.Sprintf("%d", e.ID)))
		a.entitiesTable.SetCell(row, 1, tview.NewTableCell(e.Name))
		a.entitiesTable.SetCell(row, 2, tview.NewTableCell(e.Kind).SetTextColor(tcell.GetColor(style.Color)))
		a.entitiesTable.SetCell(row, 3, tview.NewTableCell(a.cache.CaseName(e.CaseID)))
		a.entitiesTable.SetCell(row, 4, tview.NewTableCell(status))
		row++
	}
}

// drawGraph renders the view-model as an adjacency listing; a terminal
// has no node canvas, so edges read source -[relation]-> target.
func (a *App) drawGraph() {
	g := graph.Build(a.cache.Entities(), a.cache.Relationships(), a.scopeCaseID)

	var b strings.Builder
	if len(g.Nodes) == 0 {
		b.WriteString("[#8a939f]no entities in scope")
	}
	for _, n := range g.Nodes {
		fmt.Fprintf(&b, "[%s]%s %s[-] (%s)\n", n.Style.Color, shapeGlyph(n.Style.Shape), n.Label, n.Detail.Kind)
	}
	if len(g.Edges) > 0 {
		b.WriteString("\n")
	}
	for _, e := range g.Edges {
		from, _ := g.NodeByID(e.From)
		to, _ := g.NodeByID(e.To)
		fmt.Fprintf(&b, "%s -[%s]-> %s\n", from.Label, e.Label, to.Label)
	}
	a.graphView.SetText(b.String())
}

// drawTimeline renders the events cached by the last refresh. It runs
// on the event goroutine and must never touch the network.
func (a *App) drawTimeline() {
	a.timelineMu.Lock()
	events := a.timelineEvents
	err := a.timelineErr
	a.timelineMu.Unlock()

	if err != nil {
		a.timelineView.SetText(fmt.Sprintf("[#ef4444]timeline unavailable: %v", err))
		return
	}

	var b strings.Builder
	for _, item := range timeline.Render(events) {
		fmt.Fprintf(&b, "[%s]%s %s[-] [#8a939f]%s\n", item.Color, item.Icon, item.Label, item.TimeLabel)
	}
	a.timelineView.SetText(b.String())
}

// transformSelected runs the transform for the highlighted entity and
// reports through the status bar.
func (a *App) transformSelected(ctx context.Context) {
	row, _ := a.entitiesTable.GetSelection()
	if row < 1 {
		return
	}
	idCell := a.entitiesTable.GetCell(row, 0)
	if idCell == nil {
		return
	}
	var entityID int64
	if _, err := fmt.Sscanf(idCell.Text, "%d", &entityID); err != nil {
		return
	}

	a.setStatus(fmt.Sprintf("[#f59e0b]transform running for entity %d...", entityID))
	a.app.QueueUpdateDraw(a.drawEntities)

	summary, err := a.orch.Run(ctx, entityID)
	if err != nil {
		a.setStatus(fmt.Sprintf("[#ef4444]transform failed: %v", err))
		a.app.QueueUpdateDraw(a.drawEntities)
		return
	}

	msg := fmt.Sprintf("[#22c55e]transform done: %d new entities, %d new relationships", summary.NewEntities, summary.NewEdges)
	if summary.Message != "" {
		msg += " [#8a939f](" + summary.Message + ")"
	}
	a.setStatus(msg)

	if a.bus != nil {
		if perr := a.bus.PublishTransform(ctx, bus.TransformMessage{
			EntityID:    entityID,
			EntityName:  a.cache.EntityName(entityID),
			NewEntities: summary.NewEntities,
			NewEdges:    summary.NewEdges,
			Message:     summary.Message,
		}); perr != nil {
			a.logger.Printf("failed to publish transform result: %v", perr)
		}
	}

	a.app.QueueUpdateDraw(a.redraw)
}

func (a *App) setStatus(text string) {
	a.app.QueueUpdateDraw(func() {
		a.statusBar.SetText(text)
	})
}

func shapeGlyph(shape string) string {
	switch shape {
	case "triangle":
		return "^"
	case "square", "box":
		return "#"
	case "diamond":
		return "<>"
	case "ellipse":
		return "o"
	case "hexagon":
		return "{}"
	default:
		return "*"
	}
}
