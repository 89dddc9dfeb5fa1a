package api

// Заголовки, которыми кэш помечает ответы, не пришедшие из сети.
const (
	// HeaderFromCache "true" у ответа, отданного из кэша вместо сети
	HeaderFromCache = "X-From-Cache"
	// HeaderCacheTime время сохранения записи в RFC 3339
	HeaderCacheTime = "X-Cache-Time"
	// HeaderOffline выставляется у синтетического 503, когда сети нет
	// и в кэше ничего не нашлось
	HeaderOffline = "X-Offline"
)
