package master

import (
	"strings"

	"github.com/cmlabs-hris/hris-ledger/internal/pkg/validator"
)

type CreateItemRequest struct {
	Kind Kind   `json:"-"`
	Name string `json:"name"`
}

func (r *CreateItemRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Name = strings.TrimSpace(r.Name)
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	} else if len(r.Name) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 100 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateItemRequest struct {
	Kind Kind   `json:"-"`
	ID   string `json:"-"`
	Name string `json:"name"`
}

func (r *UpdateItemRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	r.Name = strings.TrimSpace(r.Name)
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	} else if len(r.Name) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 100 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ItemResponse struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Name string `json:"name"`
}

func (i Item) ToResponse() ItemResponse {
	return ItemResponse{ID: i.ID, Kind: string(i.Kind), Name: i.Name}
}
