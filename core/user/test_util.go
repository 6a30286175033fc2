package user

import (
	"github.com/go-playground/validator/v10"

	"github.com/devbenja/colegio/core"
)

// NewServiceMock builds a Service backed by an in-memory repo, no DB handle.
func NewServiceMock(repo Repository, mailSvc core.EmailService, conf *core.Config, validate *validator.Validate) *Service {
	return &Service{
		repo:     repo,
		mailSvc:  mailSvc,
		conf:     conf,
		validate: validate,
	}
}
