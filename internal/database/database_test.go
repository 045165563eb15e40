package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"condoflow/internal/config"
	"condoflow/internal/model"
	"condoflow/internal/repository"
)

var testNow = time.Date(2026, 12, 10, 9, 0, 0, 0, time.UTC)

type DBTestSuite struct {
	suite.Suite
	db  *DB
	ctx context.Context
}

func TestDBTestSuite(t *testing.T) {
	suite.Run(t, new(DBTestSuite))
}

func (s *DBTestSuite) SetupTest() {
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", &logger)
	require.NoError(s.T(), err, "failed to create test database")
	s.db = db
	s.ctx = context.Background()

	seeded, err := db.SeedIfEmpty(s.ctx, repository.DemoSeed(testNow))
	require.NoError(s.T(), err)
	require.True(s.T(), seeded)
}

func (s *DBTestSuite) TearDownTest() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *DBTestSuite) TestSeedRunsOnce() {
	seeded, err := s.db.SeedIfEmpty(s.ctx, repository.DemoSeed(testNow))
	s.Require().NoError(err)
	s.False(seeded)

	areas, err := s.db.ListAreas(s.ctx)
	s.Require().NoError(err)
	s.Len(areas, 5)
	s.Equal("salao", areas[0].ID)
}

func (s *DBTestSuite) TestReservations() {
	all, err := s.db.ListReservations(s.ctx, repository.ReservationFilter{})
	s.Require().NoError(err)
	s.Len(all, 4)

	approved, err := s.db.ListReservations(s.ctx, repository.ReservationFilter{Status: model.StatusApproved})
	s.Require().NoError(err)
	s.Require().Len(approved, 1)
	s.Equal(int64(2), approved[0].ID)
	s.Equal(model.MustTimeOfDay("12:00"), approved[0].Start)
	s.True(approved[0].CreatedAt.Equal(testNow))

	r := &model.Reservation{
		Area: "Cinema", ResidentName: "Ricardo Almeida", Unit: "302-B", OwnerID: "2",
		Date: "2026-12-20", Start: model.MustTimeOfDay("14:00"), End: model.MustTimeOfDay("16:00"),
		Guests: 6, Status: model.StatusPending, CreatedAt: testNow, UpdatedAt: testNow,
	}
	s.Require().NoError(s.db.CreateReservation(s.ctx, r))
	s.Equal(int64(5), r.ID)

	r.Status = model.StatusApproved
	s.Require().NoError(s.db.UpdateReservation(s.ctx, r))

	got, err := s.db.GetReservation(s.ctx, 5)
	s.Require().NoError(err)
	s.Equal(model.StatusApproved, got.Status)
	s.Equal(model.MustTimeOfDay("16:00"), got.End)

	mine, err := s.db.ListReservations(s.ctx, repository.ReservationFilter{OwnerID: "2", Date: "2026-12-20"})
	s.Require().NoError(err)
	s.Len(mine, 1)

	s.Require().NoError(s.db.DeleteReservation(s.ctx, 5))
	_, err = s.db.GetReservation(s.ctx, 5)
	s.ErrorIs(err, repository.ErrNotFound)
	s.ErrorIs(s.db.DeleteReservation(s.ctx, 5), repository.ErrNotFound)
	s.ErrorIs(s.db.UpdateReservation(s.ctx, r), repository.ErrNotFound)
}

func (s *DBTestSuite) TestSyncAreas() {
	err := s.db.SyncAreas(s.ctx, []model.Area{
		{ID: "salao", Name: "Salão de Festas", Capacity: 60, Active: true},
		{ID: "piscina", Name: "Piscina", Capacity: 30, Active: true,
			OpensAt: model.MustTimeOfDay("08:00"), ClosesAt: model.MustTimeOfDay("20:00")},
	})
	s.Require().NoError(err)

	areas, err := s.db.ListAreas(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(areas, 6)

	byID := make(map[string]model.Area)
	for _, a := range areas {
		byID[a.ID] = a
	}
	s.Equal(60, byID["salao"].Capacity)
	s.True(byID["salao"].Active)
	s.False(byID["cinema"].Active)
	piscina := byID["piscina"]
	s.True(piscina.HasHours())
}

func (s *DBTestSuite) TestUnits() {
	units, err := s.db.ListUnits(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(units, 5)
	s.Nil(units[2].Resident, "vacant unit has no resident")
	s.Nil(units[2].Contact)
	s.Equal("Liam Anderson", units[0].ResidentName())

	u := &model.Unit{Unit: "C-306", Block: "Bloco C", Type: "-", Owner: "Não Informado", Status: model.UnitVacant}
	s.Require().NoError(s.db.CreateUnit(s.ctx, u))
	s.Equal("6", u.ID)

	u.Resident = &model.Resident{Name: "Paula Reis", Since: "Novo"}
	u.Contact = &model.Contact{Phone: "Pendente", Email: "paula@example.com"}
	u.Status = model.UnitOccupied
	s.Require().NoError(s.db.UpdateUnit(s.ctx, u))

	got, err := s.db.GetUnit(s.ctx, "6")
	s.Require().NoError(err)
	s.Equal(*u, *got)

	s.Require().NoError(s.db.DeleteUnit(s.ctx, "6"))
	_, err = s.db.GetUnit(s.ctx, "6")
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *DBTestSuite) TestTransactionsAndChart() {
	txns, err := s.db.ListTransactions(s.ctx)
	s.Require().NoError(err)
	s.Len(txns, 9)

	t := &model.Transaction{Description: "Taxa extra", Category: "Cota", Amount: 99.9, Date: "2026-12-10",
		Type: model.TransactionIncome, Status: model.TransactionPending, Entity: "Unidade 302-B"}
	s.Require().NoError(s.db.CreateTransaction(s.ctx, t))
	s.Equal(int64(10), t.ID)

	txns, err = s.db.ListTransactions(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(10), txns[0].ID, "newest first")

	t.Status = model.TransactionCompleted
	s.Require().NoError(s.db.UpdateTransaction(s.ctx, t))
	got, err := s.db.GetTransaction(s.ctx, 10)
	s.Require().NoError(err)
	s.Equal(*t, *got)

	s.Require().NoError(s.db.DeleteTransaction(s.ctx, 10))
	s.ErrorIs(s.db.DeleteTransaction(s.ctx, 10), repository.ErrNotFound)

	chart, err := s.db.ChartSeries(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(chart, 12)
	s.Equal("Jan", chart[0].Name)
	s.Equal("Dez", chart[11].Name)
}

func (s *DBTestSuite) TestTickets() {
	tickets, err := s.db.ListTickets(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(tickets, 5)
	s.Equal(int64(1042), tickets[0].ID)

	t := &model.Ticket{Title: "Torneira", Category: "Hidráulica", Requester: "Unidade 302-B", Date: "2026-12-10",
		Priority: model.PriorityLow, Status: model.TicketOpen, UpdatedAt: testNow}
	s.Require().NoError(s.db.CreateTicket(s.ctx, t))
	s.Equal(int64(1043), t.ID)

	t.Status = model.TicketResolved
	t.AssignedTo = "Zelador"
	s.Require().NoError(s.db.UpdateTicket(s.ctx, t))
	got, err := s.db.GetTicket(s.ctx, 1043)
	s.Require().NoError(err)
	s.Equal(model.TicketResolved, got.Status)
	s.Equal("Zelador", got.AssignedTo)

	s.Require().NoError(s.db.DeleteTicket(s.ctx, 1043))
	_, err = s.db.GetTicket(s.ctx, 1043)
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *DBTestSuite) TestPostsKeepPerUserState() {
	p, err := s.db.GetPost(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(p.PollOptions, 3)
	s.Len(p.Comments, 1)

	p.ToggleLike("2")
	s.Require().NoError(p.Vote("2", 3))
	s.Require().NoError(s.db.UpdatePost(s.ctx, p))

	got, err := s.db.GetPost(s.ctx, 2)
	s.Require().NoError(err)
	s.Equal(25, got.Likes)
	s.Equal(19, got.PollOptions[2].Votes)
	s.True(got.LikedBy["2"])
	s.Equal(3, got.VotedBy["2"])

	msg := &model.Post{Type: model.PostMessage, Author: model.Author{ID: "2", Name: "Ricardo Almeida"}, Title: "Oi", CreatedAt: testNow}
	s.Require().NoError(s.db.CreatePost(s.ctx, msg))
	got, err = s.db.GetPost(s.ctx, msg.ID)
	s.Require().NoError(err)
	s.Equal("2", got.Author.ID)
	s.NotNil(got.Comments)
	s.Empty(got.PollOptions)

	posts, err := s.db.ListPosts(s.ctx)
	s.Require().NoError(err)
	s.Len(posts, 4)

	s.Require().NoError(s.db.DeletePost(s.ctx, msg.ID))
	s.ErrorIs(s.db.DeletePost(s.ctx, msg.ID), repository.ErrNotFound)
}

func (s *DBTestSuite) TestNotifications() {
	notes, err := s.db.ListNotifications(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(notes, 4)
	s.Equal(int64(1), notes[0].ID, "newest first")

	n := &model.Notification{Title: "Teste", Message: "Olá", Type: model.NotificationInfo, Recipient: "2", CreatedAt: testNow}
	s.Require().NoError(s.db.CreateNotification(s.ctx, n))
	s.Equal(int64(5), n.ID)

	s.Require().NoError(s.db.MarkNotificationRead(s.ctx, 5))
	s.Require().NoError(s.db.MarkNotificationRead(s.ctx, 5), "marking twice is fine")
	s.ErrorIs(s.db.MarkNotificationRead(s.ctx, 99), repository.ErrNotFound)

	notes, err = s.db.ListNotifications(s.ctx)
	s.Require().NoError(err)
	s.True(notes[0].Read)
	s.Equal(int64(5), notes[0].ID)
}

func (s *DBTestSuite) TestAuditTables() {
	names, err := s.db.GetTableNames(s.ctx)
	s.Require().NoError(err)
	s.Contains(names, "reservations")

	rows, columns, err := s.db.GetTableData(s.ctx, "tickets")
	s.Require().NoError(err)
	s.Len(rows, 5)
	s.Contains(columns, "requester")
	s.Equal("Portaria", rows[3]["requester"], "rows come in rowid order")

	_, _, err = s.db.GetTableData(s.ctx, "sqlite_master; DROP TABLE units")
	s.Error(err)
}

func (s *DBTestSuite) TestPing() {
	s.NoError(s.db.PingContext(s.ctx))
}

func TestBackupService(t *testing.T) {
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.SeedIfEmpty(context.Background(), repository.DemoSeed(testNow))
	require.NoError(t, err)

	dir := t.TempDir()
	svc := NewBackupService(db, config.BackupConfig{StoragePath: dir, RetentionDays: 7}, &logger)
	svc.now = func() time.Time { return testNow }

	path, err := svc.PerformBackup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "backup_20261210_090000.db"), path)

	restored, err := NewDB(path, &logger)
	require.NoError(t, err)
	defer restored.Close()
	units, err := restored.ListUnits(context.Background())
	require.NoError(t, err)
	assert.Len(t, units, 5)

	svc.now = time.Now
	stale := filepath.Join(dir, "backup_20200101_000000.db")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o600))
	old := time.Now().AddDate(0, 0, -30)
	require.NoError(t, os.Chtimes(stale, old, old))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0o600))
	require.NoError(t, os.Chtimes(filepath.Join(dir, "notes.txt"), old, old))

	assert.Equal(t, 1, svc.CleanupOldBackups())
	assert.NoFileExists(t, stale)
	assert.FileExists(t, filepath.Join(dir, "notes.txt"))
}
