package models

// Roles carried by an authenticated identity
const (
	RoleCitizen = "citizen"
	RolePolice  = "police"
)

// UserProfile holds the fields this service reads from the users and police collections
type UserProfile struct {
	ID        interface{} `json:"_id" bson:"_id"`
	FullName  string      `json:"full_name" bson:"full_name"`
	Phone     string      `json:"phone" bson:"phone"`
	Aadhar    string      `json:"aadhar" bson:"aadhar"`
	Email     string      `json:"email" bson:"email"`
	Role      string      `json:"role,omitempty" bson:"role,omitempty"`
	StationID string      `json:"station_id,omitempty" bson:"station_id,omitempty"`
}

// Identity is the authenticated caller of a request
type Identity struct {
	UserID    string
	Role      string
	StationID string
}

// IsPolice reports whether the identity belongs to a police officer
func (i Identity) IsPolice() bool {
	return i.Role == RolePolice
}
