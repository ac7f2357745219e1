package cmd

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/jsphweid/utsu/constants"
	"github.com/jsphweid/utsu/midi"
	"github.com/jsphweid/utsu/model"
	"github.com/jsphweid/utsu/reader"
	"github.com/jsphweid/utsu/song"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

var listenAddr string

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "addr", constants.GetListenAddr(), "address to listen on")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the song editing API",
	Long:  `Serves an HTTP API a piano roll can use to edit songs and fetch their pitch curves.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server := NewServer(NewProjects(newManager(newVoicebankReader())))
		slog.Info("listening", "addr", listenAddr)
		return http.ListenAndServe(listenAddr, server.Handler())
	},
}

type Server struct {
	projects *Projects
}

func NewServer(projects *Projects) *Server {
	return &Server{projects: projects}
}

// Handler routes the API. Any origin may call it.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/projects", s.handleCreateProject).Methods("POST")
	router.HandleFunc("/projects/{id}", s.handleCloseProject).Methods("DELETE")
	router.HandleFunc("/projects/{id}/notes", s.handleGetNotes).Methods("GET")
	router.HandleFunc("/projects/{id}/notes", s.handleAddNotes).Methods("POST")
	router.HandleFunc("/projects/{id}/notes", s.handleRemoveNotes).Methods("DELETE")
	router.HandleFunc("/projects/{id}/notes", s.handleModifyNote).Methods("PATCH")
	router.HandleFunc("/projects/{id}/standardize", s.handleStandardize).Methods("POST")
	router.HandleFunc("/projects/{id}/pitch", s.handlePitch).Methods("GET")
	router.HandleFunc("/projects/{id}/render", s.handleRender).Methods("GET")
	router.HandleFunc("/projects/{id}/midi", s.handleMidi).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
	})
	return c.Handler(router)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, errNoProject), errors.Is(err, song.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, reader.ErrNotVoicebank), errors.Is(err, fs.ErrNotExist),
		errors.Is(err, song.ErrInvalidPitch), errors.Is(err, song.ErrDuplicatePosition):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var input model.NewProjectRequestBody
	if !decode(w, r, &input) {
		return
	}
	id, err := s.projects.Create(input.Voicebank, input.Name, input.Tempo)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, model.NewProjectResponse{Id: id})
}

func (s *Server) handleCloseProject(w http.ResponseWriter, r *http.Request) {
	if !s.projects.Close(mux.Vars(r)["id"]) {
		writeError(w, http.StatusNotFound, errNoProject)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// withProject runs f on the project named in the route and writes its
// result, or its error.
func (s *Server) withProject(w http.ResponseWriter, r *http.Request, f func(p *project) (any, error)) {
	var res any
	err := s.projects.with(mux.Vars(r)["id"], func(p *project) error {
		var err error
		res, err = f(p)
		return err
	})
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetNotes(w http.ResponseWriter, r *http.Request) {
	s.withProject(w, r, func(p *project) (any, error) {
		return p.song.Notes(), nil
	})
}

func (s *Server) handleAddNotes(w http.ResponseWriter, r *http.Request) {
	var notes []model.NoteData
	if !decode(w, r, &notes) {
		return
	}
	s.withProject(w, r, func(p *project) (any, error) {
		added := p.song.AddNotes(notes)
		if !added.IsValid() {
			return model.MutateResponse{Notes: []model.NoteUpdateData{}}, nil
		}
		defer p.edited()
		return p.song.StandardizeNotes(added.Min, added.Max)
	})
}

func (s *Server) handleRemoveNotes(w http.ResponseWriter, r *http.Request) {
	var input model.RemoveNotesRequestBody
	if !decode(w, r, &input) {
		return
	}
	s.withProject(w, r, func(p *project) (any, error) {
		removed := p.song.RemoveNotes(input.Positions)
		if len(removed.Notes) > 0 {
			defer p.edited()
		}
		res := model.MutateResponse{Notes: []model.NoteUpdateData{}}
		if removed.Prev != nil && removed.Next != nil {
			var err error
			res, err = p.song.StandardizeNotes(removed.Prev.Position, removed.Next.Position)
			if err != nil {
				return nil, err
			}
		}
		res.Removed = removed.Notes
		return res, nil
	})
}

func (s *Server) handleModifyNote(w http.ResponseWriter, r *http.Request) {
	var input model.NoteData
	if !decode(w, r, &input) {
		return
	}
	s.withProject(w, r, func(p *project) (any, error) {
		update, err := p.song.ModifyNote(input)
		if err != nil {
			return nil, err
		}
		p.edited()
		return update, nil
	})
}

func (s *Server) handleStandardize(w http.ResponseWriter, r *http.Request) {
	var input model.StandardizeRequestBody
	if !decode(w, r, &input) {
		return
	}
	s.withProject(w, r, func(p *project) (any, error) {
		res, err := p.song.StandardizeNotes(input.First, input.Last)
		if err != nil {
			return nil, err
		}
		p.edited()
		return res, nil
	})
}

func (s *Server) handlePitch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var values [3]int
	for i, key := range []string{"first", "last", "note"} {
		v, err := strconv.Atoi(query.Get(key))
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("first, last and note must be integers"))
			return
		}
		values[i] = v
	}
	first, last, noteNum := values[0], values[1], values[2]
	if first > last {
		writeError(w, http.StatusBadRequest, errors.New("first must not be after last"))
		return
	}
	s.withProject(w, r, func(p *project) (any, error) {
		return model.PitchResponse{
			FirstStep: first,
			LastStep:  last,
			Pitch:     p.song.PitchString(first, last, noteNum),
		}, nil
	})
}

// handleRender returns every note's pitch string, rendering now if edits
// arrived since the last render.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.withProject(w, r, func(p *project) (any, error) {
		p.rerender()
		return p.rendered, nil
	})
}

func (s *Server) handleMidi(w http.ResponseWriter, r *http.Request) {
	err := s.projects.with(mux.Vars(r)["id"], func(p *project) error {
		exported, err := midi.Export(p.song)
		if err != nil {
			return err
		}
		w.Header().Set("Content-Type", "audio/midi")
		_, err = exported.WriteTo(w)
		return err
	})
	if err != nil {
		writeError(w, statusOf(err), err)
	}
}
