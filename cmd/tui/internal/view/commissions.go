package view

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/frontdesk/internal/commission"
	"github.com/MrJamesThe3rd/frontdesk/internal/export"
)

type commissionsState int

const (
	commissionsStateTimeframe commissionsState = iota
	commissionsStateLoading
	commissionsStateSummary
	commissionsStatePath
	commissionsStateExporting
)

// CommissionsModel shows each referring doctor's base and commission for a
// period and saves it as a workbook.
type CommissionsModel struct {
	CommonModel
	svc *commission.Service

	state           commissionsState
	timeframePicker TimeframePicker

	from   time.Time
	to     time.Time
	totals []commission.DoctorTotal

	form    *huh.Form
	path    string
	spinner spinner.Model
	status  string
	err     error
}

func NewCommissionsModel(session Session, svc *commission.Service) CommissionsModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return CommissionsModel{
		CommonModel:     CommonModel{Session: session},
		svc:             svc,
		state:           commissionsStateTimeframe,
		timeframePicker: NewTimeframePicker(TimeframeThisMonth, session.Today),
		path:            "./comisiones",
		spinner:         s,
	}
}

func (m CommissionsModel) Title() string { return "Comisiones" }

func (m CommissionsModel) ShortHelp() string {
	switch m.state {
	case commissionsStateSummary:
		return "x: exportar | p: otro período | Esc: menú"
	case commissionsStateLoading, commissionsStateExporting:
		return "Procesando..."
	}

	return "Esc: regresar | Enter: confirmar"
}

func (m CommissionsModel) Init() tea.Cmd {
	return nil
}

func (m CommissionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.from, m.to = msg.Start, msg.End
		m.state = commissionsStateLoading

		return m, tea.Batch(m.spinner.Tick, m.summaryCmd())

	case commissionsMsg:
		m.state = commissionsStateSummary
		m.err = msg.err
		m.status = msg.text

		if msg.err == nil && msg.totals != nil {
			m.totals = msg.totals
		}

		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	switch m.state {
	case commissionsStateTimeframe:
		return m.updateTimeframe(msg)
	case commissionsStateSummary:
		return m.updateSummary(msg)
	case commissionsStatePath:
		return m.updatePath(msg)
	}

	return m, nil
}

func (m CommissionsModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)

	return m, cmd
}

func (m CommissionsModel) updateSummary(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "p":
		m.state = commissionsStateTimeframe
		m.timeframePicker.Reset()
		m.status, m.err = "", nil
	case "x":
		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Key("path").
					Title("Carpeta de destino").
					Description("Se crea si no existe").
					Placeholder("./comisiones").
					Value(&m.path),
			),
		).WithWidth(50).WithShowHelp(false)
		m.state = commissionsStatePath

		return m, m.form.Init()
	}

	return m, nil
}

func (m CommissionsModel) updatePath(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = commissionsStateSummary
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.path = m.form.GetString("path")
	m.state = commissionsStateExporting

	return m, tea.Batch(m.spinner.Tick, m.exportCmd())
}

func (m CommissionsModel) View() string {
	switch m.state {
	case commissionsStateTimeframe:
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())
	case commissionsStatePath:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	case commissionsStateLoading, commissionsStateExporting:
		return lipgloss.NewStyle().Padding(1).Render(fmt.Sprintf("%s Calculando comisiones...", m.spinner.View()))
	}

	header := lipgloss.NewStyle().Bold(true).Render(
		fmt.Sprintf("Comisiones del %s al %s", FormatDate(m.from), FormatDate(m.to)))

	parts := []string{header, "", summarizeCommissions(m.totals)}

	if m.err != nil {
		parts = append(parts, "", errorStyle.Render(describeError(m.err)))
	}

	if m.status != "" {
		parts = append(parts, "", faintStyle.Render(m.status))
	}

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func summarizeCommissions(totals []commission.DoctorTotal) string {
	if len(totals) == 0 {
		return faintStyle.Render("Sin pacientes referidos en el período.")
	}

	var (
		b          strings.Builder
		patients   int
		base, comm decimal.Decimal
	)

	fmt.Fprintf(&b, "%-28s %9s %12s %12s\n", "Médico", "Pacientes", "Base", "Comisión")

	for _, dt := range totals {
		fmt.Fprintf(&b, "%-28s %9d %12s %12s\n", dt.DoctorName, dt.Patients, FormatAmount(dt.Base), FormatAmount(dt.Commission))

		patients += dt.Patients
		base = base.Add(dt.Base)
		comm = comm.Add(dt.Commission)
	}

	fmt.Fprintf(&b, "%-28s %9d %12s %12s", "Total", patients, FormatAmount(base), FormatAmount(comm))

	return b.String()
}

// Messages

type commissionsMsg struct {
	totals []commission.DoctorTotal
	text   string
	err    error
}

func (m CommissionsModel) summaryCmd() tea.Cmd {
	from, to := m.from, m.to

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		totals, err := m.svc.Summary(ctx, from, to)
		if err == nil && totals == nil {
			totals = []commission.DoctorTotal{}
		}

		return commissionsMsg{totals: totals, err: err}
	}
}

func (m CommissionsModel) exportCmd() tea.Cmd {
	from, to, dir := m.from, m.to, m.path

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		totals, err := m.svc.Summary(ctx, from, to)
		if err != nil {
			return commissionsMsg{err: err}
		}

		name := fmt.Sprintf("comisiones_%s_%s.xlsx", FormatDate(from), FormatDate(to))

		path, err := writeWorkbook(dir, name, func(f *os.File) error {
			return export.WriteCommissions(f, from, to, totals)
		})
		if err != nil {
			return commissionsMsg{err: err}
		}

		return commissionsMsg{totals: totals, text: "Exportado a " + path}
	}
}
