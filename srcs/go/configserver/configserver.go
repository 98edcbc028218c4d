package configserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/pkg/errors"

	"github.com/shardrun/shardrun/srcs/go/launch"
	"github.com/shardrun/shardrun/srcs/go/log"
	"github.com/shardrun/shardrun/srcs/go/plan"
	"github.com/shardrun/shardrun/srcs/go/utils"
)

// Config is what the server publishes: the resolved cluster and the
// launch environment derived from it.
type Config struct {
	Cluster plan.Cluster `json:"cluster"`
	Launch  launch.Env   `json:"launch"`
	Version int          `json:"version"`
}

func (c Config) Validate() error {
	if err := c.Cluster.Validate(); err != nil {
		return err
	}
	if n := len(c.Cluster.Hosts); n > 0 && c.Launch.CountNode != n {
		return errors.Errorf("count_node %d does not match %d hosts", c.Launch.CountNode, n)
	}
	return nil
}

const Endpoint = `/config`

// Server exposes the launch configuration of a running job over HTTP.
type Server struct {
	sync.RWMutex
	cancel  context.CancelFunc
	mux     http.ServeMux
	config  *Config
	version int
}

func New(cancel context.CancelFunc, init *Config) *Server {
	s := &Server{
		cancel: cancel,
		config: init,
	}
	if init != nil {
		s.version = 1
		init.Version = 1
	}
	s.mux.HandleFunc(Endpoint, s.handleConfig)
	s.mux.HandleFunc(`/ping`, s.ping)
	s.mux.HandleFunc(`/stop`, s.stop)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s.mux.ServeHTTP(w, req)
}

func (s *Server) ping(w http.ResponseWriter, req *http.Request) {
	fmt.Fprintf(w, "pong\n")
}

func (s *Server) stop(w http.ResponseWriter, req *http.Request) {
	log.Infof("stop requested from %s", req.RemoteAddr)
	s.cancel()
}

func (s *Server) handleConfig(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		s.getConfig(w, req)
	case http.MethodPut:
		s.putConfig(w, req)
	case http.MethodDelete:
		s.deleteConfig(w, req)
	default:
		http.Error(w, "unsupported method", http.StatusMethodNotAllowed)
	}
}

func (s *Server) getConfig(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	s.RLock()
	defer s.RUnlock()
	if s.config == nil {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, "no config\n")
		return
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "    ")
	if err := e.Encode(s.config); err != nil {
		log.Errorf("failed to encode JSON: %v", err)
	}
}

func (s *Server) putConfig(w http.ResponseWriter, req *http.Request) {
	var config Config
	if err := utils.ReadJSON(req.Body, &config); err != nil {
		log.Errorf("failed to decode JSON: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if err := config.Validate(); err != nil {
		log.Errorf("invalid config: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	s.Lock()
	defer s.Unlock()
	s.version++
	config.Version = s.version
	s.config = &config
	log.Infof("config updated to version %d: %s", s.version, config.Launch.DebugString())
}

func (s *Server) deleteConfig(w http.ResponseWriter, req *http.Request) {
	s.Lock()
	defer s.Unlock()
	s.config = nil
	log.Warnf("config deleted")
}
