package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/frontdesk/internal/apperr"
	"github.com/MrJamesThe3rd/frontdesk/internal/billing"
	"github.com/MrJamesThe3rd/frontdesk/internal/export"
	"github.com/MrJamesThe3rd/frontdesk/internal/sequence"
)

type dayState int

const (
	dayStateBrowse dayState = iota
	dayStateVoid
)

// DayModel lists the patients of one day in sequence order and lets the
// operator void a visit or rebuild the numbering.
type DayModel struct {
	CommonModel
	billing *billing.Service
	seq     *sequence.Manager

	state   dayState
	date    time.Time
	table   table.Model
	records []*billing.Record
	form    *huh.Form

	loading bool
	err     error
	status  string
}

func NewDayModel(session Session, billingSvc *billing.Service, seq *sequence.Manager) DayModel {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Paciente", Width: 28},
		{Title: "Médico", Width: 22},
		{Title: "Método", Width: 18},
		{Title: "Total", Width: 12},
		{Title: "Estado", Width: 16},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return DayModel{
		CommonModel: CommonModel{Session: session},
		billing:     billingSvc,
		seq:         seq,
		date:        session.Today(),
		table:       t,
		loading:     true,
	}
}

func (m DayModel) Title() string { return "Pacientes del día" }

func (m DayModel) ShortHelp() string {
	if m.state == dayStateVoid {
		return "Enter: anular | Esc: cancelar"
	}

	return "Esc: menú | ←/→: día | v: anular | c: verificar | n: renumerar | r: recargar"
}

func (m DayModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDayMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.records = msg.records
			m.refreshTable()
		}

		return m, nil

	case dayActionMsg:
		m.status = msg.text
		if msg.err != nil {
			m.status = describeError(msg.err)
		}

		m.state = dayStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case dayStateBrowse:
		return m.updateBrowse(msg)
	case dayStateVoid:
		return m.updateVoid(msg)
	}

	return m, nil
}

func (m DayModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "left":
			m.date = m.date.AddDate(0, 0, -1)
			m.status = ""

			return m, m.loadCmd()
		case "right":
			m.date = m.date.AddDate(0, 0, 1)
			m.status = ""

			return m, m.loadCmd()
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "v":
			return m.enterVoidMode()
		case "c":
			return m, m.verifyCmd()
		case "n":
			return m, m.renumberCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m DayModel) selected() *billing.Record {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.records) {
		return nil
	}

	return m.records[idx]
}

func (m DayModel) enterVoidMode() (tea.Model, tea.Cmd) {
	rec := m.selected()
	if rec == nil || rec.IsVoided() {
		return m, nil
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("reason").
				Title("Motivo de anulación").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("el motivo es obligatorio")
					}
					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = dayStateVoid
	m.table.Blur()

	return m, m.form.Init()
}

func (m DayModel) updateVoid(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = dayStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.voidCmd()
}

func (m DayModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Cargando pacientes...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(describeError(m.err)))
	}

	active, total := 0, 0
	for _, rec := range m.records {
		if !rec.IsVoided() {
			active++
		}
		total++
	}

	header := fmt.Sprintf("Día: %s | Activos: %d | Registrados: %d",
		activeStyle(FormatDate(m.date)), active, total)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == dayStateVoid && m.form != nil {
		name := ""
		if rec := m.selected(); rec != nil {
			name = rec.PatientName
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(fmt.Sprintf("Anular visita\n\nPaciente: %s\n\n%s", name, m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *DayModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.records))

	for _, rec := range m.records {
		ordinal := "-"
		if rec.Ordinal != nil {
			ordinal = strconv.Itoa(*rec.Ordinal)
		}

		state := "activo"

		switch {
		case rec.IsVoided():
			state = "anulado"
		case rec.IsMobileService:
			state = "móvil"
		}

		rows = append(rows, table.Row{
			ordinal,
			rec.PatientName,
			rec.DoctorName,
			export.MethodLabel(rec.PaymentMethod),
			FormatAmount(rec.Total()),
			state,
		})
	}

	m.table.SetRows(rows)
}

// describeError turns the service error taxonomy into a line for the operator.
func describeError(err error) string {
	var (
		ve *apperr.ValidationError
		ce *apperr.ConsistencyError
	)

	switch {
	case errors.As(err, &ve):
		return fmt.Sprintf("Dato inválido (%s): %s", ve.Field, ve.Reason)
	case errors.As(err, &ce):
		return fmt.Sprintf("Numeración inconsistente el %s: %s. Use 'n' para renumerar.",
			FormatDate(ce.Date), ce.Detail)
	case errors.Is(err, apperr.ErrNotFound):
		return "No encontrado"
	case errors.Is(err, apperr.ErrAlreadyVoided):
		return "La visita ya estaba anulada"
	case errors.Is(err, apperr.ErrAlreadyClosed):
		return "El día ya fue cerrado"
	case errors.Is(err, apperr.ErrForbidden):
		return "Operación no permitida para su rol"
	}

	return fmt.Sprintf("Error: %v", err)
}

// Messages

type loadDayMsg struct {
	records []*billing.Record
	err     error
}

func (m DayModel) loadCmd() tea.Cmd {
	date := m.date

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		records, err := m.billing.ListByDate(ctx, date)

		return loadDayMsg{records: records, err: err}
	}
}

type dayActionMsg struct {
	text string
	err  error
}

func (m DayModel) voidCmd() tea.Cmd {
	rec := m.selected()
	if rec == nil {
		return nil
	}

	id, reason, by := rec.ID, m.form.GetString("reason"), m.Session.Actor

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		shifted, err := m.seq.VoidAndRenumber(ctx, id, reason, by)

		return dayActionMsg{text: fmt.Sprintf("Visita anulada; %d pacientes renumerados.", shifted), err: err}
	}
}

func (m DayModel) verifyCmd() tea.Cmd {
	date := m.date

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		err := m.seq.Verify(ctx, date)

		return dayActionMsg{text: "Numeración correcta.", err: err}
	}
}

func (m DayModel) renumberCmd() tea.Cmd {
	date, by := m.date, m.Session.Actor

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		changed, err := m.seq.RenumberAll(ctx, date, by)

		return dayActionMsg{text: fmt.Sprintf("Día renumerado; %d cambios.", changed), err: err}
	}
}
