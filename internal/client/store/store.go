// Package store holds the observable client state shared by the realtime
// transport, the sync service and the UI: notifications, editing locks,
// online users and their recent activity.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/itemsync/internal/models"
)

// DefaultLockTTL срок, после которого блокировка без unlock считается потерянной
const DefaultLockTTL = 5 * time.Minute

// ChangeKind что изменилось в хранилище
type ChangeKind int

const (
	ChangeNotifications ChangeKind = iota + 1
	ChangeLocks
	ChangePresence
	ChangeActivity
)

// Change событие для подписчиков
type Change struct {
	ID   string
	Kind ChangeKind
}

// Lock блокировка редактирования, полученная от сервера
type Lock struct {
	ReceivedAt time.Time
	HolderID   string
}

// Activity последнее действие пользователя
type Activity struct {
	At     time.Time
	Action string
	ItemID string
}

// Store потокобезопасное хранилище состояния
type Store struct {
	now           func() time.Time
	locks         map[string]Lock
	online        map[string]struct{}
	activities    map[string]Activity
	observers     map[int]func(Change)
	notifications []models.Notification
	lockTTL       time.Duration
	nextObserver  int
	mu            sync.RWMutex
}

// New создает хранилище. lockTTL <= 0 означает DefaultLockTTL.
func New(lockTTL time.Duration) *Store {
	if lockTTL <= 0 {
		lockTTL = DefaultLockTTL
	}
	return &Store{
		now:        time.Now,
		locks:      make(map[string]Lock),
		online:     make(map[string]struct{}),
		activities: make(map[string]Activity),
		observers:  make(map[int]func(Change)),
		lockTTL:    lockTTL,
	}
}

// Subscribe регистрирует наблюдателя. Вызовы идут синхронно после
// изменения, без удержания блокировки. Возвращает функцию отписки.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *Store) emit(c Change) {
	s.mu.RLock()
	observers := make([]func(Change), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.RUnlock()

	for _, fn := range observers {
		fn(c)
	}
}

// AddNotification добавляет уведомление в начало списка.
// Пустые ID и Timestamp заполняются.
func (s *Store) AddNotification(n models.Notification) models.Notification {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = s.now()
	}

	s.mu.Lock()
	s.notifications = append([]models.Notification{n}, s.notifications...)
	s.mu.Unlock()

	s.emit(Change{Kind: ChangeNotifications, ID: n.ID})
	return n
}

// MarkRead помечает уведомление прочитанным
func (s *Store) MarkRead(id string) bool {
	s.mu.Lock()
	found := false
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].Read = true
			found = true
			break
		}
	}
	s.mu.Unlock()

	if found {
		s.emit(Change{Kind: ChangeNotifications, ID: id})
	}
	return found
}

// MarkAllRead помечает все уведомления прочитанными
func (s *Store) MarkAllRead() {
	s.mu.Lock()
	for i := range s.notifications {
		s.notifications[i].Read = true
	}
	s.mu.Unlock()

	s.emit(Change{Kind: ChangeNotifications})
}

// Remove удаляет уведомление
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	found := false
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()

	if found {
		s.emit(Change{Kind: ChangeNotifications, ID: id})
	}
	return found
}

// ClearNotifications удаляет все уведомления
func (s *Store) ClearNotifications() {
	s.mu.Lock()
	s.notifications = nil
	s.mu.Unlock()

	s.emit(Change{Kind: ChangeNotifications})
}

// Notifications возвращает копию списка, новые первыми
func (s *Store) Notifications() []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Notification(nil), s.notifications...)
}

// UnreadCount всегда считается по флагам Read
func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for i := range s.notifications {
		if !s.notifications[i].Read {
			n++
		}
	}
	return n
}

// SetLock записывает блокировку от сервера. Пустой holderID снимает ее.
func (s *Store) SetLock(itemKey, holderID string) {
	s.mu.Lock()
	if holderID == "" {
		delete(s.locks, itemKey)
	} else {
		s.locks[itemKey] = Lock{HolderID: holderID, ReceivedAt: s.now()}
	}
	s.mu.Unlock()

	s.emit(Change{Kind: ChangeLocks, ID: itemKey})
}

// LockHolder возвращает держателя блокировки, если она не истекла
func (s *Store) LockHolder(itemKey string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.locks[itemKey]
	if !ok || s.expired(l) {
		return "", false
	}
	return l.HolderID, true
}

// Locks возвращает действующие блокировки
func (s *Store) Locks() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]string, len(s.locks))
	for k, l := range s.locks {
		if !s.expired(l) {
			result[k] = l.HolderID
		}
	}
	return result
}

// SweepLocks удаляет истекшие блокировки и возвращает их число
func (s *Store) SweepLocks() int {
	s.mu.Lock()
	var swept []string
	for k, l := range s.locks {
		if s.expired(l) {
			delete(s.locks, k)
			swept = append(swept, k)
		}
	}
	s.mu.Unlock()

	for _, k := range swept {
		s.emit(Change{Kind: ChangeLocks, ID: k})
	}
	return len(swept)
}

// ClearLocks удаляет все блокировки, например после разрыва соединения
func (s *Store) ClearLocks() {
	s.mu.Lock()
	s.locks = make(map[string]Lock)
	s.mu.Unlock()

	s.emit(Change{Kind: ChangeLocks})
}

func (s *Store) expired(l Lock) bool {
	return s.now().Sub(l.ReceivedAt) >= s.lockTTL
}

// SetOnline добавляет пользователя в список присутствия
func (s *Store) SetOnline(userID string) {
	s.mu.Lock()
	s.online[userID] = struct{}{}
	s.mu.Unlock()

	s.emit(Change{Kind: ChangePresence, ID: userID})
}

// SetOffline удаляет пользователя из списка присутствия
func (s *Store) SetOffline(userID string) {
	s.mu.Lock()
	delete(s.online, userID)
	delete(s.activities, userID)
	s.mu.Unlock()

	s.emit(Change{Kind: ChangePresence, ID: userID})
}

// OnlineUsers возвращает отсортированный список пользователей онлайн
func (s *Store) OnlineUsers() []string {
	s.mu.RLock()
	users := make([]string, 0, len(s.online))
	for u := range s.online {
		users = append(users, u)
	}
	s.mu.RUnlock()

	sort.Strings(users)
	return users
}

// IsOnline сообщает, есть ли пользователь в списке присутствия
func (s *Store) IsOnline(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.online[userID]
	return ok
}

// SetActivity запоминает последнее действие пользователя
func (s *Store) SetActivity(userID, action, itemID string) {
	s.mu.Lock()
	s.activities[userID] = Activity{Action: action, ItemID: itemID, At: s.now()}
	s.mu.Unlock()

	s.emit(Change{Kind: ChangeActivity, ID: userID})
}

// Activities возвращает копию последних действий пользователей
func (s *Store) Activities() map[string]Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]Activity, len(s.activities))
	for k, v := range s.activities {
		result[k] = v
	}
	return result
}
