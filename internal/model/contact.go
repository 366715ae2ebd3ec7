package model

// Contact maps contacts. The client/address book the estimator reads
// from; coordinates may be absent and are backfilled by geocoding or by
// manual entry when geocoding is unavailable.
type Contact struct {
	ContactID  string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"contact_id"`
	Name       string   `gorm:"type:varchar(150);not null"                     json:"name"`
	Email      *string  `gorm:"type:varchar(255)"                              json:"email,omitempty"`
	Phone      *string  `gorm:"type:varchar(30)"                               json:"phone,omitempty"`
	Address    *string  `gorm:"type:varchar(255)"                              json:"address,omitempty"`
	City       *string  `gorm:"type:varchar(100)"                              json:"city,omitempty"`
	State      *string  `gorm:"type:varchar(2)"                                json:"state,omitempty"`
	PostalCode *string  `gorm:"type:varchar(9)"                                json:"postal_code,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	VersionedModel
}

// TableName sets the table name.
func (Contact) TableName() string { return "contacts" }

// HasCoordinates reports whether the contact already carries a geocoded position.
func (c *Contact) HasCoordinates() bool {
	return c.Latitude != nil && c.Longitude != nil
}
