// Package journal coordinates entry ingestion: every write analyzes the body,
// persists the derived fields and folds the entry into the relationship graph
// inside one unit of work.
package journal

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/johncui/rapport/pkg/engine/distill"
	"github.com/johncui/rapport/pkg/engine/social"
	"github.com/johncui/rapport/pkg/metrics"
	"github.com/johncui/rapport/pkg/model"
)

// Options configures Engine.
type Options struct {
	Distiller distill.Distiller
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

// Engine is the entry ingestion orchestrator and the read side over the
// same stores.
type Engine struct {
	uow       model.UnitOfWork
	distiller distill.Distiller
	updater   *social.Updater
	validate  *validator.Validate
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

func New(uow model.UnitOfWork, opt Options) *Engine {
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	if opt.Distiller == nil {
		opt.Distiller = distill.NewHeuristic()
	}
	return &Engine{
		uow:       uow,
		distiller: opt.Distiller,
		updater:   social.NewUpdater(opt.Logger.Named("social")),
		validate:  newValidator(),
		metrics:   opt.Metrics,
		logger:    opt.Logger,
		now:       time.Now,
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check validates in and reports every failing field as one ErrValidation.
func (e *Engine) check(in any) error {
	err := e.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", model.ErrValidation, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", model.ErrValidation, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fe.Field() + " must not be empty"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	default:
		return fe.Field() + " is invalid"
	}
}

func checkOwner(owner model.OwnerID) error {
	if strings.TrimSpace(string(owner)) == "" {
		return model.ErrInvalidOwner
	}
	return nil
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
