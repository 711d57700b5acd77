package middleware

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/todo-app/internal/config"
	"github.com/iliyamo/todo-app/internal/logging"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }
func (cw *captureWriter) Write(b []byte) (int, error) {
	cw.size += int64(len(b))
	if cw.limit <= 0 || cw.size <= cw.limit {
		cw.buf.Write(b)
	}
	return cw.ResponseWriter.Write(b)
}

// todoGenKey holds a per-user counter bumped by every successful write.
// todoListKey embeds that counter, so a list read before a write can only
// ever be stored under a key nobody looks up again.  Both are derived from
// the authenticated user only, never from request input.
func todoGenKey(cfg config.CacheConfig, uid string) string {
	return cfg.Prefix + ":todos:gen:" + uid
}

func todoListKey(cfg config.CacheConfig, uid string, gen int64) string {
	return cfg.Prefix + ":todos:user:" + uid + ":" + strconv.FormatInt(gen, 10)
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdrJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdrJSON)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
	copy(out[8:8+len(hdrJSON)], hdrJSON)
	copy(out[8+len(hdrJSON):], body)
	return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return 0, nil, nil, false
	}
	header = make(http.Header)
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, header, bs[8+hlen:], true
}

// TodoListCache caches each user's GET response in Redis.  Any successful
// write by the same user bumps that user's generation before the response
// is sent, so users always read their own writes.  It must run after
// JWTAuth.  With caching disabled or no Redis client it is a no-op.
func TodoListCache(cfg config.CacheConfig, rdb *redis.Client, log logging.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	maxBody := int64(cfg.MaxBodyBytes)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := userID(c)
			if uid == "" {
				return next(c)
			}
			genKey := todoGenKey(cfg, uid)
			ctx := c.Request().Context()

			if c.Request().Method != http.MethodGet {
				if err := next(c); err != nil {
					return err
				}
				if s := c.Response().Status; s >= 200 && s < 300 {
					// detach from the request so a client disconnect cannot skip invalidation
					incrCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
					defer cancel()
					gen, err := rdb.Incr(incrCtx, genKey).Result()
					if err != nil {
						log.Warn(ctx, "todo cache invalidate", "key", genKey, "err", err)
						return nil
					}
					_ = rdb.Del(incrCtx, todoListKey(cfg, uid, gen-1)).Err()
				}
				return nil
			}

			// generation is read before the handler touches the database
			gen, err := rdb.Get(ctx, genKey).Int64()
			if err == redis.Nil {
				gen, err = 0, nil
			}
			if err != nil {
				log.Warn(ctx, "todo cache generation", "key", genKey, "err", err)
				return next(c)
			}
			key := todoListKey(cfg, uid, gen)

			if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
				if status, hdr, body, ok := decodePayload(bs); ok {
					if ct := hdr.Get(echo.HeaderContentType); ct != "" {
						c.Response().Header().Set(echo.HeaderContentType, ct)
					}
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(status)
					_, err := c.Response().Write(body)
					return err
				}
			} else if err != redis.Nil {
				log.Warn(ctx, "todo cache read", "key", key, "err", err)
			}

			// Miss: capture
			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || (maxBody > 0 && cw.size > maxBody) {
				return nil
			}
			hdr := http.Header{}
			hdr.Set(echo.HeaderContentType, c.Response().Header().Get(echo.HeaderContentType))
			payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes())
			if err != nil {
				return nil
			}
			if err := rdb.Set(context.WithoutCancel(ctx), key, payload, cfg.TTL).Err(); err != nil {
				log.Warn(ctx, "todo cache write", "key", key, "err", err)
			}
			return nil
		}
	}
}
