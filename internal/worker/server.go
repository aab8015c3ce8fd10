package worker

import (
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Server runs the asynq consumer that executes delayed release tasks.
type Server struct {
	srv *asynq.Server
	mux *asynq.ServeMux
	log *zap.Logger
}

func NewServer(redisOpt asynq.RedisClientOpt, expirer *Expirer, log *zap.Logger) *Server {
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeExpireBooking, expirer.HandleExpireBooking)

	return &Server{
		srv: srv,
		mux: mux,
		log: log.With(zap.String("component", "task_worker")),
	}
}

// Start runs the consumer in the background.
func (s *Server) Start() {
	go func() {
		s.log.Info("Task worker starting")
		if err := s.srv.Run(s.mux); err != nil {
			s.log.Fatal("Task worker failed", zap.Error(err))
		}
	}()
}

func (s *Server) Shutdown() {
	s.log.Info("Task worker shutting down")
	s.srv.Shutdown()
}
