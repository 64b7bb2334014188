package lifecycle

import (
	"github.com/jhoicas/facturas-api/pkg/logger"
)

// Kind identifica el tipo de recurso que viaja en una petición de escritura.
type Kind string

const (
	KindUser     Kind = "user"
	KindCustomer Kind = "customer"
	KindInvoice  Kind = "invoice"
)

// Request describe la petición de escritura en curso: tipo de recurso, método
// HTTP y el principal autenticado (vacío en rutas públicas como el registro).
type Request struct {
	Kind   Kind
	Method string
	UserID string
}

// Stage es una etapa nombrada del pipeline de escritura. Applies decide si la
// etapa corre para la petición (tipo de recurso + método); Apply muta el
// payload deserializado antes de persistir.
type Stage interface {
	Name() string
	Applies(req Request) bool
	Apply(req Request, payload any) error
}

// Pipeline ejecuta en orden de registro las etapas cuyo predicado coincide.
type Pipeline struct {
	stages []Stage
	log    *logger.Logger
}

// NewPipeline construye el pipeline. log puede ser nil (tests).
func NewPipeline(log *logger.Logger, stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages, log: log}
}

// Run aplica las etapas coincidentes sobre payload. La primera que falle corta
// la ejecución.
func (p *Pipeline) Run(req Request, payload any) error {
	for _, stage := range p.stages {
		if !stage.Applies(req) {
			continue
		}
		if err := stage.Apply(req, payload); err != nil {
			if p.log != nil {
				p.log.Error().Err(err).Str("stage", stage.Name()).Str("kind", string(req.Kind)).Msg("etapa de escritura falló")
			}
			return err
		}
		if p.log != nil {
			p.log.Debug().Str("stage", stage.Name()).Str("kind", string(req.Kind)).Str("method", req.Method).Msg("etapa aplicada")
		}
	}
	return nil
}
