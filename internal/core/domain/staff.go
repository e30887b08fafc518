package domain

type Name struct {
	First string `validate:"required"`
	Last  string `validate:"required"`
}

type Address struct {
	Street   string `validate:"required"`
	Postcode string `validate:"required,len=5,numeric"`
	Region   string `validate:"required"`
	State    string `validate:"required"`
}

type StaffRecord struct {
	ID       string `validate:"required,staffid"`
	Password string `validate:"required"` // hashed, legacy hex or legacy plain text
	Name     Name
	Phone    string `validate:"required,phone"`
	Position string `validate:"required"`
	Address  Address
}
