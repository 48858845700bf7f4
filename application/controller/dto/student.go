package dto

type RegisterStudentDTO struct {
	IdentityKey string      `json:"identityKey" validate:"required,identity_key"`
	DisplayName string      `json:"displayName" validate:"required,min=2,max=100"`
	Descriptors [][]float64 `json:"descriptors"`
	Photos      []string    `json:"photos"`
}
