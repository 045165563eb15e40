package repository

import (
	"time"

	"condoflow/internal/model"
)

// Seed is the demo data a fresh store starts with.
type Seed struct {
	Areas         []model.Area
	Reservations  []model.Reservation
	Units         []model.Unit
	Transactions  []model.Transaction
	Tickets       []model.Ticket
	Posts         []model.Post
	Notifications []model.Notification
	Chart         []model.ChartPoint
}

// DefaultAreas is the area catalog used when no areas.yaml is present.
func DefaultAreas() []model.Area {
	return []model.Area{
		{ID: "salao", Name: "Salão de Festas Master", Icon: "celebration", Capacity: 80, Active: true},
		{ID: "churrasqueira", Name: "Churrasqueira Gourmet", Icon: "outdoor_grill", Capacity: 20, Active: true},
		{ID: "quadra", Name: "Quadra Poliesportiva", Icon: "sports_soccer", Capacity: 20, Active: true},
		{ID: "gourmet", Name: "Espaço Gourmet", Icon: "restaurant", Capacity: 15, Active: true},
		{ID: "cinema", Name: "Cinema", Icon: "movie", Capacity: 12, Active: true},
	}
}

// DemoSeed builds the demo data with dates relative to now, so the reservation
// tabs and reminders have something to show.
func DemoSeed(now time.Time) Seed {
	day := func(offset int) string { return now.AddDate(0, 0, offset).Format(model.DateLayout) }
	tod := model.MustTimeOfDay

	return Seed{
		Areas: DefaultAreas(),
		Reservations: []model.Reservation{
			{ID: 1, Area: "Salão de Festas Master", ResidentName: "Ana Souza", Unit: "302-B", OwnerID: "r-ana",
				Date: day(9), Start: tod("18:00"), End: tod("23:59"), Guests: 45, Status: model.StatusPending,
				Notes: "Ceia de Natal da família", CreatedAt: now, UpdatedAt: now},
			{ID: 2, Area: "Churrasqueira Gourmet", ResidentName: "Carlos Oliveira", Unit: "105-A", OwnerID: "r-carlos",
				Date: day(1), Start: tod("12:00"), End: tod("18:00"), Guests: 15, Status: model.StatusApproved,
				CreatedAt: now, UpdatedAt: now},
			{ID: 3, Area: "Quadra Poliesportiva", ResidentName: "Grupo do Futebol (Marcos)", Unit: "202-C", OwnerID: "r-marcos",
				Date: day(-1), Start: tod("19:00"), End: tod("21:00"), Guests: 10, Status: model.StatusCompleted,
				CreatedAt: now, UpdatedAt: now},
			{ID: 4, Area: "Espaço Gourmet", ResidentName: "Fernanda Lima", Unit: "401-A", OwnerID: "r-fernanda",
				Date: day(5), Start: tod("19:30"), End: tod("23:00"), Guests: 8, Status: model.StatusPending,
				Notes: "Jantar de noivado íntimo", CreatedAt: now, UpdatedAt: now},
		},
		Units: []model.Unit{
			{ID: "1", Unit: "A-104", Block: "Bloco A", Resident: &model.Resident{Name: "Liam Anderson", Since: "Out 2023"},
				Type: "Inquilino", Contact: &model.Contact{Phone: "+1 (555) 012-3456", Email: "liam.a@example.com"},
				Owner: "Sarah Jenkins", Status: model.UnitOccupied},
			{ID: "2", Unit: "A-105", Block: "Bloco A", Resident: &model.Resident{Name: "Olivia Martin", Since: "Jan 2021"},
				Type: "Proprietário", Contact: &model.Contact{Phone: "+1 (555) 987-6543", Email: "olivia.m@example.com"},
				Owner: "Mesmo do Morador", Status: model.UnitOccupied},
			{ID: "3", Unit: "B-201", Block: "Bloco B", Type: "-", Owner: "Real Estate Holdings LLC", Status: model.UnitVacant},
			{ID: "4", Unit: "B-202", Block: "Bloco B", Resident: &model.Resident{Name: "Marcus Johnson", Since: "Fev 2022"},
				Type: "Proprietário", Contact: &model.Contact{Phone: "+1 (555) 234-5678", Email: "marcus.j@example.com"},
				Owner: "Mesmo do Morador", Status: model.UnitOccupied},
			{ID: "5", Unit: "C-305", Block: "Bloco C", Resident: &model.Resident{Name: "Jessica Smith", Since: "Nov 2023"},
				Type: "Inquilino", Contact: &model.Contact{Phone: "+1 (555) 345-6789", Email: "j.smith@example.com"},
				Owner: "Robert Chang", Status: model.UnitPaymentPending},
		},
		Transactions: []model.Transaction{
			{ID: 1, Description: "Taxa Condominial - Mensal", Category: "Cota Mensal", Amount: 850, Date: day(-5), Type: model.TransactionIncome, Status: model.TransactionCompleted, Entity: "Unidade 302-B"},
			{ID: 2, Description: "Manutenção de Elevadores", Category: "Manutenção", Amount: 1200, Date: day(-6), Type: model.TransactionExpense, Status: model.TransactionCompleted, Entity: "Otis Elevadores"},
			{ID: 3, Description: "Serviço de Jardinagem", Category: "Jardinagem", Amount: 450, Date: day(-7), Type: model.TransactionExpense, Status: model.TransactionPending, Entity: "Verde Vida Paisagismo"},
			{ID: 4, Description: "Taxa Condominial - Mensal", Category: "Cota Mensal", Amount: 850, Date: day(-5), Type: model.TransactionIncome, Status: model.TransactionOverdue, Entity: "Unidade 105-A"},
			{ID: 5, Description: "Conta de Energia (Áreas Comuns)", Category: "Utilidades", Amount: 3240.50, Date: day(-10), Type: model.TransactionExpense, Status: model.TransactionCompleted, Entity: "Enel"},
			{ID: 6, Description: "Multa por Barulho", Category: "Multas", Amount: 250, Date: day(-11), Type: model.TransactionIncome, Status: model.TransactionPending, Entity: "Unidade 501-C"},
			{ID: 7, Description: "Produtos de Limpeza", Category: "Insumos", Amount: 380.90, Date: day(-13), Type: model.TransactionExpense, Status: model.TransactionCompleted, Entity: "Limpa Tudo Ltda"},
			{ID: 8, Description: "Reserva Salão de Festas", Category: "Reservas", Amount: 150, Date: day(-3), Type: model.TransactionIncome, Status: model.TransactionCompleted, Entity: "Unidade 204-A"},
			{ID: 9, Description: "Seguro Predial (Parcela 10/12)", Category: "Seguros", Amount: 980, Date: day(-14), Type: model.TransactionExpense, Status: model.TransactionCompleted, Entity: "Porto Seguro"},
		},
		Tickets: []model.Ticket{
			{ID: 1042, Title: "Vazamento no teto da garagem", Description: "Há uma goteira constante em cima da vaga 42.",
				Category: "Hidráulica", Requester: "Unidade 302-A", Date: day(-1), Priority: model.PriorityHigh,
				Status: model.TicketInProgress, Location: "Garagem G1", AssignedTo: "José (Zelador)", UpdatedAt: now.Add(-2 * time.Hour)},
			{ID: 1041, Title: "Portão de pedestres travando", Description: "O portão não fecha sozinho.",
				Category: "Segurança", Requester: "Portaria", Date: day(-2), Priority: model.PriorityCritical,
				Status: model.TicketOpen, Location: "Entrada Principal", UpdatedAt: now.AddDate(0, 0, -1)},
			{ID: 1040, Title: "Lâmpada queimada no Hall", Description: "Hall do 5º andar sem iluminação.",
				Category: "Elétrica", Requester: "Unidade 504-B", Date: day(-3), Priority: model.PriorityLow,
				Status: model.TicketResolved, Location: "Bloco B - 5º Andar", AssignedTo: "Eletricista Externo", UpdatedAt: now.AddDate(0, 0, -1)},
			{ID: 1039, Title: "Barulho excessivo após 22h", Description: "Som alto vindo do andar de cima.",
				Category: "Reclamação", Requester: "Unidade 101-A", Date: day(-3), Priority: model.PriorityMedium,
				Status: model.TicketWaiting, Location: "Bloco A", UpdatedAt: now.AddDate(0, 0, -2)},
			{ID: 1038, Title: "Limpeza da Piscina", Description: "Água turva desde o fim de semana.",
				Category: "Manutenção", Requester: "Unidade 202-C", Date: day(-4), Priority: model.PriorityMedium,
				Status: model.TicketOpen, Location: "Área Comum", UpdatedAt: now.AddDate(0, 0, -3)},
		},
		Posts: []model.Post{
			{ID: 1, Type: model.PostNotice, Author: model.Author{ID: "1", Name: "Sarah Johnson", Role: "Síndica"},
				Title:   "Manutenção Preventiva dos Elevadores",
				Content: "Na próxima terça-feira realizaremos a manutenção preventiva nos elevadores do Bloco A das 09h às 14h.",
				Pinned:  true, Urgent: true, Likes: 12, CreatedAt: now.Add(-2 * time.Hour),
				Comments: []model.Comment{
					{ID: 1, Author: "Ricardo (302-B)", Text: "Obrigado pelo aviso!", CreatedAt: now.Add(-time.Hour)},
					{ID: 2, Author: "Sarah Johnson", Text: "Disponha, Ricardo.", IsAdmin: true, CreatedAt: now.Add(-30 * time.Minute)},
				}},
			{ID: 2, Type: model.PostPoll, Author: model.Author{ID: "1", Name: "Sarah Johnson", Role: "Síndica"},
				Title: "Decoração de Natal do Hall Principal", Content: "Qual temática vocês preferem para este ano?",
				Likes: 24, CreatedAt: now.AddDate(0, 0, -1),
				PollOptions: []model.PollOption{
					{ID: 1, Text: "Tradicional (Vermelho e Dourado)", Votes: 45},
					{ID: 2, Text: "Inverno (Azul e Prata)", Votes: 32},
					{ID: 3, Text: "Minimalista (Branco e Luzes)", Votes: 18},
				},
				Comments: []model.Comment{
					{ID: 3, Author: "Fernanda (401-A)", Text: "Voto no tradicional!", CreatedAt: now.Add(-20 * time.Hour)},
				}},
			{ID: 3, Type: model.PostMessage, Author: model.Author{ID: "r-marcos", Name: "Marcos Silva", Role: "Morador 202-C"},
				Title: "Achados e Perdidos: Chaves do Carro", Content: "Encontrei um molho de chaves de carro (Honda) próximo à piscina.",
				Likes: 8, CreatedAt: now.Add(-3 * time.Hour), Comments: []model.Comment{}},
		},
		Notifications: []model.Notification{
			{ID: 1, Title: "Nova Reserva de Área Comum", Message: "A unidade 401-A solicitou o Espaço Gourmet.", Type: model.NotificationInfo, Audience: model.RoleAdmin, CreatedAt: now.Add(-10 * time.Minute)},
			{ID: 2, Title: "Pagamento em Atraso", Message: "Unidade 105-A está com boletos pendentes.", Type: model.NotificationAlert, Audience: model.RoleAdmin, CreatedAt: now.Add(-45 * time.Minute)},
			{ID: 3, Title: "Manutenção Concluída", Message: "O conserto do portão principal foi finalizado.", Type: model.NotificationSuccess, Read: true, CreatedAt: now.Add(-2 * time.Hour)},
			{ID: 4, Title: "Reclamação de Barulho", Message: "Unidade 501 reportou barulho excessivo após as 22h.", Type: model.NotificationAlert, Audience: model.RoleAdmin, Read: true, CreatedAt: now.AddDate(0, 0, -1)},
		},
		Chart: []model.ChartPoint{
			{Name: "Jan", Revenue: 32000, Expense: 25000},
			{Name: "Fev", Revenue: 29000, Expense: 22000},
			{Name: "Mar", Revenue: 35000, Expense: 24000},
			{Name: "Abr", Revenue: 38000, Expense: 26000},
			{Name: "Mai", Revenue: 36000, Expense: 23500},
			{Name: "Jun", Revenue: 42500, Expense: 28000},
			{Name: "Jul", Revenue: 41000, Expense: 27000},
			{Name: "Ago", Revenue: 39500, Expense: 26500},
			{Name: "Set", Revenue: 37000, Expense: 24000},
			{Name: "Out", Revenue: 44000, Expense: 29000},
			{Name: "Nov", Revenue: 38500, Expense: 25000},
			{Name: "Dez", Revenue: 52000, Expense: 35000},
		},
	}
}
