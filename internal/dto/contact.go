package dto

// ── contact module DTOs ──

// CreateContactRequest new contact payload.
type CreateContactRequest struct {
	Name       string   `json:"name"        binding:"required,min=2,max=150"`
	Email      *string  `json:"email"       binding:"omitempty,email"`
	Phone      *string  `json:"phone"       binding:"omitempty,max=30"`
	Address    *string  `json:"address"     binding:"omitempty,max=255"`
	City       *string  `json:"city"        binding:"omitempty,max=100"`
	State      *string  `json:"state"       binding:"omitempty,len=2"`
	PostalCode *string  `json:"postal_code" binding:"omitempty,max=9"`
	Latitude   *float64 `json:"latitude"    binding:"omitempty,min=-90,max=90"`
	Longitude  *float64 `json:"longitude"   binding:"omitempty,min=-180,max=180"`
}

// UpdateContactRequest partial update payload.
type UpdateContactRequest struct {
	Name       *string  `json:"name"        binding:"omitempty,min=2,max=150"`
	Email      *string  `json:"email"       binding:"omitempty,email"`
	Phone      *string  `json:"phone"       binding:"omitempty,max=30"`
	Address    *string  `json:"address"     binding:"omitempty,max=255"`
	City       *string  `json:"city"        binding:"omitempty,max=100"`
	State      *string  `json:"state"       binding:"omitempty,len=2"`
	PostalCode *string  `json:"postal_code" binding:"omitempty,max=9"`
	Latitude   *float64 `json:"latitude"    binding:"omitempty,min=-90,max=90"`
	Longitude  *float64 `json:"longitude"   binding:"omitempty,min=-180,max=180"`
}

// ContactListRequest paginated search query.
type ContactListRequest struct {
	Search   string `form:"search"`
	Page     int    `form:"page,default=1"       binding:"omitempty,min=1"`
	PageSize int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
}

// ContactResponse contact payload.
type ContactResponse struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Email      *string  `json:"email,omitempty"`
	Phone      *string  `json:"phone,omitempty"`
	Address    *string  `json:"address,omitempty"`
	City       *string  `json:"city,omitempty"`
	State      *string  `json:"state,omitempty"`
	PostalCode *string  `json:"postal_code,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}

// ContactBrief embedded contact summary.
type ContactBrief struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	City *string `json:"city,omitempty"`
}
