package matchadmin

import (
	"google.golang.org/grpc"

	"github.com/bookbuddy/matchengine/internal/app"
	"github.com/bookbuddy/matchengine/internal/config"
	"github.com/bookbuddy/matchengine/internal/matching"
)

// Registrar ties the MatchAdmin service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
	cfg    *config.Config
	engine *matching.Engine
}

// NewRegistrar creates a new Registrar for the MatchAdmin service
func NewRegistrar(appCtx *app.AppContext, cfg *config.Config, engine *matching.Engine) *Registrar {
	return &Registrar{appCtx: appCtx, cfg: cfg, engine: engine}
}

// Register attaches the MatchAdmin service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	service := NewService(r.appCtx, r.cfg, r.engine)
	s.RegisterService(&ServiceDesc, service)
}
