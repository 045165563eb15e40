package model

// Unit statuses as shown in the directory.
const (
	UnitOccupied       = "Ocupado"
	UnitVacant         = "Vago"
	UnitPaymentPending = "Pagamento Pendente"
	UnitMaintenance    = "Em Manutenção"
)

// Resident is the person living in a unit.
type Resident struct {
	Name  string `json:"name"`
	Since string `json:"since,omitempty"`
	Image string `json:"image,omitempty"`
}

// Contact holds private contact data of a resident.
type Contact struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Unit is an apartment listed in the directory.
type Unit struct {
	ID       string    `json:"id"`
	Unit     string    `json:"unit"`
	Block    string    `json:"block"`
	Resident *Resident `json:"resident"`
	Type     string    `json:"type"`
	Contact  *Contact  `json:"contact"`
	Owner    string    `json:"owner"`
	Status   string    `json:"status"`
}

// ResidentName returns the resident name or an empty string for vacant units.
func (u *Unit) ResidentName() string {
	if u.Resident == nil {
		return ""
	}
	return u.Resident.Name
}

// ContactEmail returns the contact email or an empty string.
func (u *Unit) ContactEmail() string {
	if u.Contact == nil {
		return ""
	}
	return u.Contact.Email
}

// DirectoryStats summarizes the directory.
type DirectoryStats struct {
	Occupied       int `json:"occupied"`
	Vacant         int `json:"vacant"`
	TotalResidents int `json:"total_residents"`
}
