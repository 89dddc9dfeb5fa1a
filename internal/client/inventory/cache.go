// Package inventory keeps the authoritative item list received from the
// server apart from local changes that are still waiting in the queue.
// Readers see the authoritative items with pending changes applied on top.
package inventory

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/iudanet/itemsync/internal/models"
)

// PendingPrefix префикс временного ID позиции, созданной офлайн
const PendingPrefix = "pending-"

// Pending неподтвержденное изменение
type Pending struct {
	Draft    models.ItemDraft
	ActionID string
	ItemID   string
	Kind     models.ActionKind
}

// View позиция, как ее видит пользователь
type View struct {
	models.Item
	// Pending позиция содержит неподтвержденные изменения
	Pending bool
}

// Cache авторитетные позиции + слой неподтвержденных изменений
type Cache struct {
	items   map[string]models.Item
	pending []Pending
	mu      sync.RWMutex
}

// NewCache создает пустой кэш
func NewCache() *Cache {
	return &Cache{items: make(map[string]models.Item)}
}

// Replace заменяет авторитетный список целиком
func (c *Cache) Replace(items []models.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]models.Item, len(items))
	for _, it := range items {
		c.items[it.ID] = it
	}
}

// Upsert записывает позицию, подтвержденную сервером
func (c *Cache) Upsert(item models.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[item.ID] = item
}

// Authoritative возвращает позицию без слоя неподтвержденных изменений
func (c *Cache) Authoritative(id string) (models.Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	it, ok := c.items[id]
	return it, ok
}

// Delete удаляет позицию по событию сервера
func (c *Cache) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
}

// AddPending добавляет неподтвержденное изменение
func (c *Cache) AddPending(p Pending) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, p)
}

// PendingFromAction восстанавливает изменение из записи очереди.
// Тело PATCH и тело /quantity совпадают по полям с ItemDraft.
func PendingFromAction(a *models.QueuedAction) Pending {
	p := Pending{ActionID: a.ID, Kind: a.Kind, ItemID: itemIDFromEndpoint(a.Endpoint)}
	if a.Kind == models.ActionCreate {
		p.ItemID = PendingPrefix + a.ID
	}
	if len(a.Payload) > 0 {
		_ = json.Unmarshal(a.Payload, &p.Draft)
	}
	return p
}

// Confirm убирает изменение из слоя и применяет ответ сервера.
// body ответ сервера на воспроизведенный запрос, может быть пустым.
func (c *Cache) Confirm(a *models.QueuedAction, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.takePending(a.ID)
	if !ok {
		p = PendingFromAction(a)
	}

	if p.Kind == models.ActionDelete {
		delete(c.items, p.ItemID)
		return
	}

	var item models.Item
	if len(body) > 0 && json.Unmarshal(body, &item) == nil && item.ID != "" {
		c.items[item.ID] = item
		return
	}
	// Сервер не вернул позицию: применяем черновик к авторитетной копии
	if cur, ok := c.items[p.ItemID]; ok {
		c.items[p.ItemID] = p.Draft.Apply(cur)
	}
}

// Discard откатывает изменение, которое сервер отверг
func (c *Cache) Discard(a *models.QueuedAction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.takePending(a.ID)
}

func (c *Cache) takePending(actionID string) (Pending, bool) {
	for i, p := range c.pending {
		if p.ActionID == actionID {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return p, true
		}
	}
	return Pending{}, false
}

// PendingCount число неподтвержденных изменений
func (c *Cache) PendingCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pending)
}

// List возвращает позиции с примененным слоем, отсортированные по имени
func (c *Cache) List() []View {
	c.mu.RLock()
	defer c.mu.RUnlock()

	views := make(map[string]View, len(c.items))
	for id, it := range c.items {
		views[id] = View{Item: it}
	}

	for _, p := range c.pending {
		switch p.Kind {
		case models.ActionCreate:
			item := p.Draft.Apply(models.Item{ID: p.ItemID})
			views[p.ItemID] = View{Item: item, Pending: true}
		case models.ActionDelete:
			delete(views, p.ItemID)
		default:
			if v, ok := views[p.ItemID]; ok {
				views[p.ItemID] = View{Item: p.Draft.Apply(v.Item), Pending: true}
			}
		}
	}

	result := make([]View, 0, len(views))
	for _, v := range views {
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name == result[j].Name {
			return result[i].ID < result[j].ID
		}
		return result[i].Name < result[j].Name
	})
	return result
}

// Get возвращает позицию с примененным слоем
func (c *Cache) Get(id string) (View, bool) {
	for _, v := range c.List() {
		if v.ID == id {
			return v, true
		}
	}
	return View{}, false
}

// itemIDFromEndpoint "/inventory/42/quantity" -> "42"
func itemIDFromEndpoint(endpoint string) string {
	parts := strings.Split(strings.Trim(endpoint, "/"), "/")
	if len(parts) >= 2 {
		return parts[1]
	}
	return ""
}
