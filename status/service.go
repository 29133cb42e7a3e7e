package status

// Service wraps Registry for the service hub
type Service struct {
	registry *Registry
}

// NewService creates a status service with an empty registry
func NewService() *Service {
	return &Service{registry: NewRegistry()}
}

func (s *Service) Name() string { return "status" }

func (s *Service) Dependencies() []string { return nil }

func (s *Service) Init(args ...any) error { return nil }

func (s *Service) Start() error { return nil }

func (s *Service) Stop() error { return nil }

// Registry returns the underlying metrics registry
func (s *Service) Registry() *Registry { return s.registry }
