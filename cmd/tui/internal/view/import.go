package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/frontdesk/internal/catalog"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStateImporting
	importStateResult
)

// ImportModel loads a price list CSV into the study catalog.
type ImportModel struct {
	CommonModel
	catalog *catalog.Service

	state       importState
	filePicker  filepicker.Model
	skippedList list.Model

	result *catalog.ImportResult
	status string
	err    error
}

func NewImportModel(session Session, svc *catalog.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		CommonModel: CommonModel{Session: session},
		catalog:     svc,
		filePicker:  fp,
	}
}

func (m ImportModel) Title() string { return "Importar lista de precios" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStateResult {
		return "↑/↓: filas omitidas | Esc: regresar"
	}

	return "Esc: menú | Enter: seleccionar"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStateResult {
			var cmd tea.Cmd
			m.skippedList, cmd = m.skippedList.Update(msg)

			return m, cmd
		}

	case importResultMsg:
		m.state = importStateResult
		m.err = msg.err

		if msg.err != nil {
			m.status = describeError(msg.err)
			return m, nil
		}

		m.result = msg.result
		m.status = fmt.Sprintf("%d estudios importados, %d filas omitidas (codificación %s).",
			msg.result.Imported, len(msg.result.Skipped), msg.result.Charset)

		items := make([]list.Item, len(msg.result.Skipped))
		for i, re := range msg.result.Skipped {
			items[i] = skippedItem(re)
		}

		m.skippedList = list.New(items, skippedDelegate{}, 80, 15)
		m.skippedList.Title = "Filas omitidas"
		m.skippedList.SetShowStatusBar(false)
		m.skippedList.SetFilteringEnabled(false)
		m.skippedList.SetShowHelp(false)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importando %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	if m.state == importStateResult {
		m.state = importStateFilePick
		m.result, m.err, m.status = nil, nil, ""

		return m, m.filePicker.Init()
	}

	return m, Back
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Seleccione el archivo CSV (separado por ';'):\n\n%s", m.filePicker.View()),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	}

	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(errorStyle.Render(m.status) + "\n\n(Esc para regresar)")
	}

	content := okStyle.Render(m.status)
	if m.result != nil && len(m.result.Skipped) > 0 {
		content += "\n\n" + m.skippedList.View()
	}

	return style.Render(content + "\n\n(Esc para regresar)")
}

// Messages

type importResultMsg struct {
	result *catalog.ImportResult
	err    error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	by := m.Session.Actor

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.catalog.Import(ctx, f, by)

		return importResultMsg{result: result, err: err}
	}
}

// Skipped row list item

type skippedItem catalog.RowError

func (i skippedItem) Title() string       { return fmt.Sprintf("Fila %d", i.Row) }
func (i skippedItem) Description() string { return i.Reason }
func (i skippedItem) FilterValue() string { return i.Reason }

type skippedDelegate struct{}

func (d skippedDelegate) Height() int                             { return 1 }
func (d skippedDelegate) Spacing() int                            { return 0 }
func (d skippedDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d skippedDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(skippedItem)
	if !ok {
		return
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	fmt.Fprintf(w, "%sFila %-5d %s", cursor, item.Row, item.Reason)
}
