package controller

import (
	"context"
	"fmt"
	"net/http"

	apperrors "presenza.io/application/appErrors"
	"presenza.io/application/constants"
	"presenza.io/application/controller/dto"
	"presenza.io/application/interfaces"
	"presenza.io/application/repository"
	"presenza.io/entities"
	server_response "presenza.io/infrastructure/serverResponse"
	"presenza.io/infrastructure/validator"
)

// RegisterStudent enrolls an identity. At least one descriptor or one
// reference photo must be supplied or the identity can never verify.
func RegisterStudent(ctx *interfaces.ApplicationContext[dto.RegisterStudentDTO]) {
	if valiErr := validator.ValidatorInstance.ValidateStruct(*ctx.Body); valiErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, valiErr)
		return
	}
	if len(ctx.Body.Descriptors) == 0 && len(ctx.Body.Photos) == 0 {
		apperrors.ClientError(ctx.Ctx, "at least one face descriptor or reference photo is required", nil)
		return
	}
	for _, descriptor := range ctx.Body.Descriptors {
		if len(descriptor) != constants.DESCRIPTOR_LENGTH {
			apperrors.ClientError(ctx.Ctx, fmt.Sprintf("face descriptors must have %d dimensions", constants.DESCRIPTOR_LENGTH), nil)
			return
		}
	}

	existing, err := repository.StudentRepo().FindOneByFilter(map[string]interface{}{
		"identityKey": ctx.Body.IdentityKey,
	})
	if err != nil {
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}
	if existing != nil {
		apperrors.ClientError(ctx.Ctx, "an enrollment already exists for this identity", nil)
		return
	}

	student, err := repository.StudentRepo().CreateOne(context.Background(), entities.Student{
		IdentityKey: ctx.Body.IdentityKey,
		DisplayName: ctx.Body.DisplayName,
		Descriptors: ctx.Body.Descriptors,
		Photos:      ctx.Body.Photos,
	})
	if err != nil {
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}

	server_response.Responder.Respond(ctx.Ctx, http.StatusCreated, "student enrolled", student, nil)
}

// FetchEnrollmentStatus reports whether an identity can verify and how
// its enrollment is stored.
func FetchEnrollmentStatus(ctx *interfaces.ApplicationContext[any]) {
	identityKey, _ := ctx.Keys["identityKey"].(string)
	if err := validator.ValidatorInstance.ValidateValue(identityKey, "required,identity_key"); err != nil {
		apperrors.ClientError(ctx.Ctx, "identity key is malformed", nil)
		return
	}

	student, err := repository.StudentRepo().FindOneByFilter(map[string]interface{}{
		"identityKey": identityKey,
		"deletedAt":   nil,
	})
	if err != nil {
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}
	if student == nil {
		apperrors.NotFoundError(ctx.Ctx, "no enrollment found for this identity")
		return
	}

	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "enrollment status fetched", map[string]any{
		"identityKey":     student.IdentityKey,
		"displayName":     student.DisplayName,
		"active":          !student.Deactivated,
		"descriptorCount": len(student.Descriptors),
		"legacyPhotos":    len(student.Photos),
	}, nil)
}
