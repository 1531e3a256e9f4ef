package server

import (
	"net/http"
)

func (s *Server) getStatus(res http.ResponseWriter, req *http.Request) {
	respond(res, s.Status.Status(), http.StatusOK)
}

func (s *Server) getConfig(res http.ResponseWriter, req *http.Request) {
	respond(res, s.Config, http.StatusOK)
}
