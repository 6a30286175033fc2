package school

import (
	"github.com/go-playground/validator/v10"

	"github.com/devbenja/colegio/core"
	"github.com/devbenja/colegio/core/user"
)

// NewServiceMock builds a Service backed by in-memory repos, no DB handle.
func NewServiceMock(repo Repository, users user.Repository, conf *core.Config, validate *validator.Validate) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		conf:     conf,
		validate: validate,
	}
}
