package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tobiasgrant/tasksync/internal/models"
	"github.com/tobiasgrant/tasksync/internal/services/tasks"
)

// changeMsg wraps an engine notification for the bubbletea loop.
type changeMsg tasks.Change

// Model renders engine state and forwards user intents to the engine. It
// buffers no record values of its own: every View call re-reads the engine.
type Model struct {
	engine  *tasks.Engine
	ctx     context.Context
	changes chan tasks.Change

	input  textinput.Model
	spin   spinner.Model
	cursor int
	adding bool
}

// New builds the view model and wires it to the engine's notifications.
func New(ctx context.Context, engine *tasks.Engine) Model {
	input := textinput.New()
	input.Placeholder = "New task title"
	input.CharLimit = models.MaxTitleLen

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	changes := make(chan tasks.Change, 64)
	engine.Subscribe(func(c tasks.Change) {
		select {
		case changes <- c:
		default:
			// A full buffer is fine: the view re-reads the whole engine
			// state on the next change it does receive.
		}
	})

	return Model{
		engine:  engine,
		ctx:     ctx,
		changes: changes,
		input:   input,
		spin:    spin,
	}
}

// waitForChange delivers the next engine notification as a message.
func (m Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		c, ok := <-m.changes
		if !ok {
			return nil
		}
		return changeMsg(c)
	}
}

// Init starts the spinner and the change listener, then loads the list.
func (m Model) Init() tea.Cmd {
	engine := m.engine
	ctx := m.ctx
	return tea.Batch(
		m.spin.Tick,
		m.waitForChange(),
		func() tea.Msg {
			engine.Load(ctx)
			return nil
		},
	)
}

func (m *Model) clampCursor(items []*models.Task) {
	if m.cursor >= len(items) {
		m.cursor = len(items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// syncSelection mirrors the cursor into the engine's selection.
func (m *Model) syncSelection(items []*models.Task) {
	if len(items) == 0 {
		m.engine.ClearSelection()
		return
	}
	m.clampCursor(items)
	m.engine.Select(items[m.cursor].ID)
}

// Update handles key presses and engine notifications.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	engine := m.engine
	ctx := m.ctx

	switch msg := msg.(type) {
	case changeMsg:
		items := engine.Items()
		m.clampCursor(items)
		return m, m.waitForChange()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.adding {
			return m.updateAdding(msg)
		}

		items := engine.Items()

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			m.syncSelection(items)

		case "down", "j":
			if m.cursor < len(items)-1 {
				m.cursor++
			}
			m.syncSelection(items)

		case " ":
			if len(items) > 0 {
				id := items[m.cursor].ID
				return m, func() tea.Msg {
					engine.Toggle(ctx, id)
					return nil
				}
			}

		case "d":
			if len(items) > 0 {
				id := items[m.cursor].ID
				return m, func() tea.Msg {
					engine.Delete(ctx, id)
					return nil
				}
			}

		case "r":
			return m, func() tea.Msg {
				engine.Load(ctx)
				return nil
			}

		case "a":
			m.adding = true
			m.input.SetValue("")
			return m, m.input.Focus()
		}
	}

	return m, nil
}

// updateAdding handles keys while the new-title input is focused.
func (m Model) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	engine := m.engine
	ctx := m.ctx

	switch msg.String() {
	case "esc":
		m.adding = false
		m.input.Blur()
		return m, nil

	case "enter":
		title := strings.TrimSpace(m.input.Value())
		m.adding = false
		m.input.Blur()
		if title == "" {
			return m, nil
		}
		return m, func() tea.Msg {
			engine.Create(ctx, models.CreateTaskInput{Title: title})
			return nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the current engine state.
func (m Model) View() string {
	items := m.engine.Items()

	var sb strings.Builder

	header := fmt.Sprintf("%s   %s %d  %s %d",
		titleStyle.Render("Tasks"),
		successStyle.Render("✔"), m.engine.CompletedCount(),
		pendingStyle.Render("•"), m.engine.PendingCount(),
	)
	if m.engine.Loading() {
		header += "  " + m.spin.View()
	}
	sb.WriteString(header + "\n\n")

	if len(items) == 0 {
		sb.WriteString(mutedStyle.Render("  nothing here, press a to add a task") + "\n")
	}

	for i, t := range items {
		box := mutedStyle.Render(boxUnchecked)
		title := t.Title
		if t.Completed {
			box = successStyle.Render(boxChecked)
			title = doneStyle.Render(title)
		}

		prefix := "  "
		if i == m.cursor && !m.adding {
			prefix = selectedStyle.Render("> ")
		}
		sb.WriteString(fmt.Sprintf("%s%s %s\n", prefix, box, title))
	}

	if m.adding {
		sb.WriteString("\n" + m.input.View() + "\n")
	}

	if errMsg := m.engine.Err(); errMsg != "" {
		sb.WriteString("\n" + errorStyle.Render("✖ "+errMsg) + "\n")
	}

	sb.WriteString("\n" + helpStyle.Render("space toggle · a add · d delete · r reload · q quit") + "\n")
	return sb.String()
}
