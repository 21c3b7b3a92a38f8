package app

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/dkeye/Punk/internal/core"
	"github.com/dkeye/Punk/internal/domain"
	"github.com/dkeye/Punk/internal/metrics"
	"github.com/rs/zerolog/log"
)

const (
	MaxTitleLen   = 64
	MaxCodeLen    = 32
	SearchLimit   = 10
	privatePrefix = "private_"
)

// RoomManager is the authoritative table of rooms. Lock order is
// manager before room; rooms never call back into the manager.
type RoomManager struct {
	mu      sync.RWMutex
	rooms   map[domain.RoomCode]core.RoomService
	codeLen int
	changes Changes
}

func NewRoomManager(codeLen int, changes Changes) *RoomManager {
	if codeLen <= 0 {
		codeLen = DefaultCodeLength
	}
	return &RoomManager{
		rooms:   make(map[domain.RoomCode]core.RoomService),
		codeLen: codeLen,
		changes: orNop(changes),
	}
}

// liveLocked reports whether code maps to a room that still accepts joins.
func (m *RoomManager) liveLocked(code domain.RoomCode) bool {
	r, ok := m.rooms[code]
	return ok && !r.Closed()
}

// CreateRoom inserts a room. An empty code is generated.
func (m *RoomManager) CreateRoom(code domain.RoomCode, title string, isPublic bool, creator domain.UserID) (core.RoomService, error) {
	code = domain.RoomCode(strings.TrimSpace(string(code)))
	if err := validateCode(code); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return nil, fmt.Errorf("%w: title longer than %d", core.ErrValidation, MaxTitleLen)
	}

	m.mu.Lock()
	if code == "" {
		code = GenerateRoomCode(m.codeLen, m.liveLocked)
	} else if m.liveLocked(code) {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", core.ErrDuplicateCode, code)
	}
	if title == "" {
		title = domain.DefaultTitle(code)
	}
	room := core.NewRoomService(&domain.Room{
		Code:      code,
		Title:     title,
		IsPublic:  isPublic,
		CreatedBy: creator,
		CreatedAt: domain.Now(),
	})
	m.rooms[code] = room
	m.mu.Unlock()

	metrics.RoomsCreated.WithLabelValues(metrics.RoomType(isPublic, false)).Inc()
	log.Info().Str("module", "app.rooms").Str("room", string(code)).Bool("public", isPublic).Str("creator", string(creator)).Msg("room created")
	m.changes.Request()
	return room, nil
}

func validateCode(code domain.RoomCode) error {
	if code == "" {
		return nil
	}
	if len(code) > MaxCodeLen {
		return fmt.Errorf("%w: code longer than %d", core.ErrValidation, MaxCodeLen)
	}
	if strings.HasPrefix(string(code), privatePrefix) {
		return fmt.Errorf("%w: code prefix %q is reserved", core.ErrValidation, privatePrefix)
	}
	if strings.ContainsFunc(string(code), func(r rune) bool { return unicode.IsSpace(r) || r == '/' }) {
		return fmt.Errorf("%w: code has forbidden characters", core.ErrValidation)
	}
	return nil
}

func (m *RoomManager) GetRoom(code domain.RoomCode) (core.RoomService, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[code]
	if !ok || r.Closed() {
		return nil, false
	}
	return r, true
}

// DeleteRoom is idempotent.
func (m *RoomManager) DeleteRoom(code domain.RoomCode) {
	m.mu.Lock()
	r, ok := m.rooms[code]
	if ok {
		delete(m.rooms, code)
	}
	m.mu.Unlock()
	if !ok {
		return
	}
	r.Close()
	metrics.RoomsDeleted.Inc()
	log.Info().Str("module", "app.rooms").Str("room", string(code)).Msg("room deleted")
	m.changes.Request()
}

// Forget drops a room that closed itself, unless the code was already reused.
func (m *RoomManager) Forget(room core.RoomService) {
	code := room.Code()
	m.mu.Lock()
	cur, ok := m.rooms[code]
	if ok && cur == room {
		delete(m.rooms, code)
	}
	m.mu.Unlock()
	if !ok || cur != room {
		return
	}
	metrics.RoomsDeleted.Inc()
	log.Info().Str("module", "app.rooms").Str("room", string(code)).Msg("ephemeral room removed")
	m.changes.Request()
}

// GetOrCreatePrivateRoom resolves the 1:1 room of a and b. The check and
// the insert share one critical section, so concurrent callers get one room.
func (m *RoomManager) GetOrCreatePrivateRoom(a, b domain.User) (core.RoomService, bool, error) {
	code, err := domain.PrivateRoomCode(a.ID, b.ID)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", core.ErrValidation, err)
	}

	m.mu.Lock()
	if m.liveLocked(code) {
		r := m.rooms[code]
		m.mu.Unlock()
		return r, false, nil
	}
	room := core.NewRoomService(&domain.Room{
		Code:         code,
		Title:        domain.PrivateTitle(b.DisplayName),
		IsPrivate:    true,
		Participants: []domain.UserID{a.ID, b.ID},
		CreatedBy:    a.ID,
		CreatedAt:    domain.Now(),
	})
	m.rooms[code] = room
	m.mu.Unlock()

	metrics.RoomsCreated.WithLabelValues(metrics.RoomType(false, true)).Inc()
	log.Info().Str("module", "app.rooms").Str("room", string(code)).Msg("private room created")
	m.changes.Request()
	return room, true, nil
}

func (m *RoomManager) services() []core.RoomService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]core.RoomService, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	return out
}

func (m *RoomManager) publicInfos() []core.RoomInfo {
	var out []core.RoomInfo
	for _, r := range m.services() {
		if r.Closed() {
			continue
		}
		if info := r.Info(); info.Public {
			out = append(out, info)
		}
	}
	return out
}

// ListPublicRooms orders by member count, then code.
func (m *RoomManager) ListPublicRooms() []core.RoomInfo {
	out := m.publicInfos()
	slices.SortFunc(out, func(a, b core.RoomInfo) int {
		if c := cmp.Compare(b.Members, a.Members); c != 0 {
			return c
		}
		return cmp.Compare(a.Code, b.Code)
	})
	return out
}

// SearchPublicRooms matches query case-insensitively against title and code,
// or any whitespace token of query against the title. Exact title hits rank
// first, then exact code hits, then larger rooms.
func (m *RoomManager) SearchPublicRooms(query string) []core.RoomInfo {
	q := strings.ToLower(strings.TrimSpace(query))
	tokens := strings.Fields(q)

	type hit struct {
		info       core.RoomInfo
		exactTitle bool
		exactCode  bool
	}
	var hits []hit
	for _, info := range m.publicInfos() {
		title := strings.ToLower(info.Title)
		code := strings.ToLower(string(info.Code))
		match := strings.Contains(title, q) || strings.Contains(code, q) ||
			slices.ContainsFunc(tokens, func(tok string) bool { return strings.Contains(title, tok) })
		if !match {
			continue
		}
		hits = append(hits, hit{info: info, exactTitle: title == q, exactCode: code == q})
	}

	slices.SortFunc(hits, func(a, b hit) int {
		if a.exactTitle != b.exactTitle {
			if a.exactTitle {
				return -1
			}
			return 1
		}
		if a.exactCode != b.exactCode {
			if a.exactCode {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(b.info.Members, a.info.Members); c != 0 {
			return c
		}
		return cmp.Compare(a.info.Code, b.info.Code)
	})

	out := make([]core.RoomInfo, 0, min(len(hits), SearchLimit))
	for _, h := range hits[:min(len(hits), SearchLimit)] {
		out = append(out, h.info)
	}
	return out
}

// PrivateRoomsOf lists summaries of the private rooms uid takes part in.
func (m *RoomManager) PrivateRoomsOf(uid domain.UserID) []core.RoomSummary {
	var out []core.RoomSummary
	for _, r := range m.services() {
		if !strings.HasPrefix(string(r.Code()), privatePrefix) || r.Closed() {
			continue
		}
		sum := r.Summary()
		if sum.Room.HasParticipant(uid) {
			out = append(out, sum)
		}
	}
	return out
}

func (m *RoomManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// Snapshot copies every live room for persistence.
func (m *RoomManager) Snapshot() map[domain.RoomCode]domain.Room {
	rooms := m.services()
	out := make(map[domain.RoomCode]domain.Room, len(rooms))
	for _, r := range rooms {
		if r.Closed() {
			continue
		}
		out[r.Code()] = r.Snapshot()
	}
	return out
}

// Load replaces the table. Member counts restart at zero and empty
// ephemeral rooms are dropped since nobody can be connected to them.
func (m *RoomManager) Load(rooms map[domain.RoomCode]domain.Room) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms = make(map[domain.RoomCode]core.RoomService, len(rooms))
	for code, r := range rooms {
		r.Code = code
		r.Members = 0
		if r.Ephemeral() {
			continue
		}
		m.rooms[code] = core.NewRoomService(&r)
	}
	log.Info().Str("module", "app.rooms").Int("rooms", len(m.rooms)).Msg("rooms loaded")
}
