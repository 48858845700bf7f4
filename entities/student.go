package entities

import (
	"time"

	"presenza.io/application/utils"
)

// Student is the enrollment record for an identity. Enrollment happens
// through the registration surface; the verification pipeline treats
// this data as read-only.
type Student struct {
	IdentityKey string      `bson:"identityKey" json:"identityKey" validate:"identity_key"`
	DisplayName string      `bson:"displayName" json:"displayName"`
	Descriptors [][]float64 `bson:"descriptors" json:"-"`
	// Photos holds legacy enrollment samples for identities registered
	// before descriptor capture existed. Descriptors are derived from
	// them lazily on first verification.
	Photos      []string `bson:"photos" json:"-"`
	Deactivated bool     `bson:"deactivated" json:"deactivated"`

	ID        string     `bson:"_id" json:"id"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
	DeletedAt *time.Time `bson:"deletedAt" json:"deletedAt"`
}

func (model Student) ParseModel() any {
	now := time.Now()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
		model.ID = utils.GenerateULIDString()
	}
	model.UpdatedAt = now
	return &model
}
