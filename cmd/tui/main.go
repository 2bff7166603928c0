package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/frontdesk/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/frontdesk/internal/actor"
	"github.com/MrJamesThe3rd/frontdesk/internal/billing"
	billingStore "github.com/MrJamesThe3rd/frontdesk/internal/billing/store"
	"github.com/MrJamesThe3rd/frontdesk/internal/catalog"
	catalogStore "github.com/MrJamesThe3rd/frontdesk/internal/catalog/store"
	"github.com/MrJamesThe3rd/frontdesk/internal/commission"
	"github.com/MrJamesThe3rd/frontdesk/internal/config"
	"github.com/MrJamesThe3rd/frontdesk/internal/database"
	"github.com/MrJamesThe3rd/frontdesk/internal/expense"
	expenseStore "github.com/MrJamesThe3rd/frontdesk/internal/expense/store"
	"github.com/MrJamesThe3rd/frontdesk/internal/reconciliation"
	reconciliationStore "github.com/MrJamesThe3rd/frontdesk/internal/reconciliation/store"
	"github.com/MrJamesThe3rd/frontdesk/internal/sequence"
	sequenceStore "github.com/MrJamesThe3rd/frontdesk/internal/sequence/store"
)

type services struct {
	billing        *billing.Service
	sequence       *sequence.Manager
	catalog        *catalog.Service
	expense        *expense.Service
	reconciliation *reconciliation.Service
	commission     *commission.Service
}

type model struct {
	session view.Session
	svc     services

	currentView View
	active      view.View
}

type View int

const (
	ViewMenu        View = 0
	ViewDay         View = 1
	ViewIntake      View = 2
	ViewExpenses    View = 3
	ViewClose       View = 4
	ViewCommissions View = 5
	ViewImport      View = 6
)

func fail(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fail("failed to load config", err)
	}

	operator := actor.Actor{ID: cfg.Operator.ID, Role: actor.Role(strings.ToLower(cfg.Operator.Role))}
	if err := operator.Validate(); err != nil {
		fail("set OPERATOR_ID and OPERATOR_ROLE", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		fail("failed to load clinic timezone", err)
	}

	tolerance, err := decimal.NewFromString(cfg.Reconciliation.Tolerance)
	if err != nil {
		fail("invalid reconciliation tolerance", err)
	}

	attribution, err := commission.ParseAttribution(cfg.Commission.Attribution)
	if err != nil {
		fail("invalid commission attribution", err)
	}

	db, err := database.New(context.Background(), database.Options{
		DSN:             cfg.ConnectionString(),
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		ConnectTimeout:  cfg.DB.ConnectTimeout,
	})
	if err != nil {
		fail("failed to connect to database", err)
	}

	if cfg.DB.Migrate {
		if err := database.Migrate(db); err != nil {
			fail("failed to migrate database", err)
		}
	}

	records := billingStore.New(db)
	catalogSvc := catalog.NewService(catalogStore.New(db))
	seq := sequence.NewManager(sequenceStore.New(db), time.Now)

	return model{
		session: view.Session{Actor: operator, Loc: loc, Clock: time.Now},
		svc: services{
			billing:        billing.NewService(records, seq, catalogSvc),
			sequence:       seq,
			catalog:        catalogSvc,
			expense:        expense.NewService(expenseStore.New(db)),
			reconciliation: reconciliation.NewService(reconciliationStore.New(db), tolerance),
			commission:     commission.NewService(records, attribution),
		},
		currentView: ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

// open builds a fresh screen so every visit starts from current data.
func (m model) open(v View) view.View {
	switch v {
	case ViewDay:
		return view.NewDayModel(m.session, m.svc.billing, m.svc.sequence)
	case ViewIntake:
		return view.NewIntakeModel(m.session, m.svc.billing, m.svc.catalog)
	case ViewExpenses:
		return view.NewExpensesModel(m.session, m.svc.expense)
	case ViewClose:
		return view.NewCloseModel(m.session, m.svc.reconciliation)
	case ViewCommissions:
		return view.NewCommissionsModel(m.session, m.svc.commission)
	case ViewImport:
		return view.NewImportModel(m.session, m.svc.catalog)
	}

	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch key := msg.String(); key {
			case "q":
				return m, tea.Quit
			case "1", "2", "3", "4", "5", "6":
				v := View(key[0] - '0')
				if v == ViewImport && !m.session.Actor.IsAdmin() {
					return m, nil
				}

				m.currentView = v
				m.active = m.open(v)

				return m, m.active.Init()
			}

			return m, nil
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		m.active = nil

		return m, nil
	}

	if m.active == nil {
		return m, nil
	}

	next, cmd := m.active.Update(msg)
	if v, ok := next.(view.View); ok {
		m.active = v
	}

	return m, cmd
}

func (m model) View() string {
	if m.currentView == ViewMenu || m.active == nil {
		menu := fmt.Sprintf("Recepción | %s (%s) | %s\n\n",
			m.session.Actor.ID, m.session.Actor.Role, view.FormatDate(m.session.Today())) +
			"1. Pacientes del día\n" +
			"2. Nuevo paciente\n" +
			"3. Gastos\n" +
			"4. Cierre de caja\n" +
			"5. Comisiones\n"

		if m.session.Actor.IsAdmin() {
			menu += "6. Importar lista de precios\n"
		}

		return lipgloss.NewStyle().Padding(2).Render(menu + "\nq. Salir")
	}

	help := lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(m.active.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).PaddingLeft(1).Render(m.active.Title()),
		m.active.View(),
		help,
	)
}

func main() {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
