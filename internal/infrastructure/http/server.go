// Package http provides the HTTP server infrastructure.
// Framework/driver layer: translates JSON requests into conversation calls.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/0xcro3dile/intentbot-go/internal/domain/entities"
)

// Chatbot is what the server needs from the conversation usecase.
type Chatbot interface {
	Respond(ctx context.Context, sessionID, text string) (string, error)
	History(ctx context.Context, sessionID string, order entities.Order) ([]entities.ChatTurn, error)
	Sessions(ctx context.Context) ([]string, error)
	Predict(text string) (entities.Prediction, error)
}

// Options configures the HTTP server.
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server is the HTTP server for the chat API and UI.
type Server struct {
	bot    Chatbot
	opts   Options
	logger *zap.Logger
}

// NewServer creates a new HTTP server.
func NewServer(bot Chatbot, opts Options, logger *zap.Logger) *Server {
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 15 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 30 * time.Second
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{bot: bot, opts: opts, logger: logger}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/sessions", s.handleSessions)
	mux.HandleFunc("POST /api/classify", s.handleClassify)
	mux.HandleFunc("GET /api/health", s.handleHealth)

	return corsMiddleware(s.loggingMiddleware(mux))
}

// Start runs the HTTP server until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	s.logger.Info("intentbot server starting", zap.String("addr", s.opts.Addr))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("shutdown", zap.Error(err))
		}
	}()

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleIndex renders a minimal chat page backed by /api/chat.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Intentbot</title>
    <style>
        body { font-family: sans-serif; max-width: 640px; margin: 2rem auto; }
        #messages { border: 1px solid #ccc; height: 420px; overflow-y: auto; padding: 0.5rem; }
        .user { text-align: right; color: #1a4d8f; }
        .bot { color: #2d6a2d; }
        .error { color: #b00020; }
        nav button { margin-right: 0.5rem; }
        .turn { border-bottom: 1px solid #eee; padding: 0.4rem 0; }
        .time { color: #777; font-size: 0.85rem; }
        .hidden { display: none; }
    </style>
</head>
<body>
    <h1>Intentbot</h1>
    <nav>
        <button onclick="show('chat')">Chat</button>
        <button onclick="show('history')">Conversation History</button>
        <button onclick="show('about')">About</button>
    </nav>

    <section id="chat">
        <div id="messages"></div>
        <form id="chat-form" onsubmit="sendMessage(event)">
            <input type="text" id="message-input" placeholder="Say something..." autocomplete="off" required>
            <button type="submit">Send</button>
        </form>
    </section>

    <section id="history" class="hidden">
        <h2>Conversation History</h2>
        <div id="turns"></div>
    </section>

    <section id="about" class="hidden">
        <h2>About</h2>
        <p>Intentbot classifies each message into one of the intents of its corpus with a
        TF-IDF vectorizer and a logistic regression model, then answers with one of that
        intent's responses. Unrecognized intents get a fallback reply.</p>
    </section>

    <script>
        let sessionId = '';

        function show(id) {
            for (const name of ['chat', 'history', 'about']) {
                document.getElementById(name).classList.toggle('hidden', name !== id);
            }
            if (id === 'history') loadHistory();
        }

        async function loadHistory() {
            const turns = document.getElementById('turns');
            turns.textContent = '';
            if (!sessionId) {
                turns.textContent = 'No conversation yet.';
                return;
            }
            const resp = await fetch('/api/history?order=reverse&session_id=' + encodeURIComponent(sessionId));
            const data = await resp.json();
            if (!resp.ok) {
                turns.textContent = data.error || 'request failed';
                return;
            }
            for (const t of data.turns) {
                const el = document.createElement('div');
                el.className = 'turn';
                const time = document.createElement('div');
                time.className = 'time';
                time.textContent = t.display_time;
                const user = document.createElement('div');
                user.className = 'user';
                user.textContent = t.user_text;
                const bot = document.createElement('div');
                bot.className = 'bot';
                bot.textContent = t.bot_text;
                el.append(time, user, bot);
                turns.appendChild(el);
            }
        }

        function append(cls, text) {
            const el = document.createElement('div');
            el.className = cls;
            el.textContent = text;
            const messages = document.getElementById('messages');
            messages.appendChild(el);
            messages.scrollTop = messages.scrollHeight;
        }

        async function sendMessage(e) {
            e.preventDefault();
            const input = document.getElementById('message-input');
            const message = input.value.trim();
            if (!message) return;
            input.value = '';
            append('user', message);

            try {
                const resp = await fetch('/api/chat', {
                    method: 'POST',
                    headers: {'Content-Type': 'application/json'},
                    body: JSON.stringify({session_id: sessionId, message: message})
                });
                const data = await resp.json();
                if (!resp.ok) {
                    append('error', data.error || 'request failed');
                    return;
                }
                sessionId = data.session_id;
                append('bot', data.reply);
            } catch (err) {
                append('error', 'Connection error');
            }
        }
    </script>
</body>
</html>`

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

type turnView struct {
	UserText    string    `json:"user_text"`
	BotText     string    `json:"bot_text"`
	Time        time.Time `json:"time"`
	DisplayTime string    `json:"display_time"`
}

type historyResponse struct {
	SessionID string     `json:"session_id"`
	Order     string     `json:"order"`
	Turns     []turnView `json:"turns"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleChat produces a reply and records the turn. A missing session id gets a fresh one.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	reply, err := s.bot.Respond(r.Context(), req.SessionID, req.Message)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{SessionID: req.SessionID, Reply: reply})
}

// handleHistory lists a session's turns, oldest first unless order=reverse.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "session_id required"})
		return
	}
	order, ok := entities.ParseOrder(r.URL.Query().Get("order"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "order must be chronological or reverse"})
		return
	}

	turns, err := s.bot.History(r.Context(), sessionID, order)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := historyResponse{SessionID: sessionID, Order: order.String(), Turns: make([]turnView, len(turns))}
	for i, t := range turns {
		resp.Turns[i] = turnView{
			UserText:    t.UserText,
			BotText:     t.BotText,
			Time:        t.Timestamp,
			DisplayTime: t.DisplayTime(),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.bot.Sessions(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// handleClassify returns the predicted intent without touching history.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	pred, err := s.bot.Predict(req.Message)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, entities.ErrEmptyInput) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message must not be empty"})
		return
	}
	s.logger.Error("request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

// decodeBody reads a size-limited JSON body into v, writing the error response on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)),
		)
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}
