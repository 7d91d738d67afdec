// Package http serves large-object backed files with full and partial
// (byte-range) content delivery.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/lovault/lovault/internal/config"
	"github.com/lovault/lovault/internal/lo"
	"github.com/lovault/lovault/internal/storage"
)

type server struct {
	storage *storage.Storage
	logger  *slog.Logger
}

func NewRouter(cfg config.Config, st *storage.Storage, logger *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: cfg.BodyLimitMB * 1024 * 1024,
	})
	app.Use(cors.New())

	s := &server{storage: st, logger: logger}

	app.Get("/file/:filename", s.serveFile)
	app.Post("/file", s.uploadFile)
	app.Delete("/file/:filename", s.deleteFile)

	return app
}

// serveFile answers GET /file/:filename: the whole object, or the
// requested byte range when the Range header carries a single
// serviceable spec. Size and content come from one transaction so a
// concurrent writer cannot produce a mismatched pairing.
func (s *server) serveFile(c *fiber.Ctx) error {
	ctx := c.Context()
	name := c.Params("filename")
	if _, err := storage.DecodeName(name); err != nil {
		return notFound(c, "file not found")
	}

	tx, err := s.storage.DB().ReadTx(ctx)
	if err != nil {
		return s.internalError(c, err)
	}
	defer tx.Rollback()

	f, err := s.storage.Open(ctx, tx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidName) {
			return notFound(c, "file not found")
		}
		return s.internalError(c, err)
	}
	defer func() { _ = f.Close(ctx) }()

	size, err := f.Size(ctx)
	if err != nil {
		return s.internalError(c, err)
	}

	ctype, encoding := contentTypeFor(name)
	c.Set(fiber.HeaderContentType, ctype)
	if encoding != "" {
		c.Set(fiber.HeaderContentEncoding, encoding)
	}
	c.Set(fiber.HeaderAcceptRanges, "bytes")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, name))

	if header := c.Get(fiber.HeaderRange); header != "" {
		raw, err := parseRangeHeader(header)
		if err == nil {
			rng, ok := raw.resolve(size)
			if !ok {
				c.Set(fiber.HeaderContentRange, fmt.Sprintf("bytes */%d", size))
				return c.SendStatus(fiber.StatusRequestedRangeNotSatisfiable)
			}
			return s.servePartial(c, tx, f, rng, size)
		}
		// an unparseable Range header is ignored, not an error
	}
	return s.serveFull(c, tx, f, size)
}

func (s *server) serveFull(c *fiber.Ctx, tx storage.Tx, f *lo.Stream, size int64) error {
	ctx := c.Context()
	sp := newSpool()
	for {
		chunk, err := f.Read(ctx, lo.ChunkSize)
		if err != nil {
			return s.spoolError(c, sp, err)
		}
		if len(chunk) == 0 {
			break
		}
		if _, err := sp.Write(chunk); err != nil {
			return s.spoolError(c, sp, err)
		}
	}
	if err := s.finish(ctx, tx, f, sp); err != nil {
		return s.spoolError(c, sp, err)
	}
	return c.SendStream(sp, int(size))
}

func (s *server) servePartial(c *fiber.Ctx, tx storage.Tx, f *lo.Stream, rng byteRange, size int64) error {
	ctx := c.Context()
	if _, err := f.Seek(ctx, rng.start, lo.SeekStart); err != nil {
		return s.internalError(c, err)
	}
	sp := newSpool()
	remaining := rng.end - rng.start + 1
	for remaining > 0 {
		chunk, err := f.Read(ctx, int(min(remaining, int64(lo.ChunkSize))))
		if err != nil {
			return s.spoolError(c, sp, err)
		}
		if len(chunk) == 0 {
			break
		}
		if _, err := sp.Write(chunk); err != nil {
			return s.spoolError(c, sp, err)
		}
		remaining -= int64(len(chunk))
	}
	if err := s.finish(ctx, tx, f, sp); err != nil {
		return s.spoolError(c, sp, err)
	}
	c.Set(fiber.HeaderContentRange, fmt.Sprintf("bytes %d-%d/%d", rng.start, rng.end, size))
	c.Status(fiber.StatusPartialContent)
	return c.SendStream(sp, int(rng.end-rng.start+1))
}

// finish releases the stream, ends the transaction, and rewinds the
// spool for sending. The spool is independent of the transaction, so
// the remote handle is long gone by the time the body goes out.
func (s *server) finish(ctx context.Context, tx storage.Tx, f *lo.Stream, sp *spool) error {
	if err := f.Close(ctx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	return sp.Rewind()
}

func (s *server) uploadFile(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file field is required")
	}
	src, err := header.Open()
	if err != nil {
		return s.internalError(c, err)
	}
	defer src.Close()

	name, err := s.storage.Save(c.Context(), header.Filename, src)
	if err != nil {
		return s.internalError(c, err)
	}
	s.logger.Info("file stored", "name", name, "size", header.Size)

	resp := uploadResponse{Name: name}
	if url, err := s.storage.URL(name); err == nil {
		resp.URL = url
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (s *server) deleteFile(c *fiber.Ctx) error {
	name := c.Params("filename")
	if err := s.storage.Delete(c.Context(), name); err != nil {
		if errors.Is(err, storage.ErrInvalidName) {
			return notFound(c, "file not found")
		}
		return s.internalError(c, err)
	}
	s.logger.Info("file deleted", "name", name)
	return c.SendStatus(fiber.StatusNoContent)
}

type uploadResponse struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": message,
	})
}

func notFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"message": message,
	})
}

func (s *server) internalError(c *fiber.Ctx, err error) error {
	s.logger.Error("request failed", "path", c.Path(), "err", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "internal server error",
	})
}

func (s *server) spoolError(c *fiber.Ctx, sp *spool, err error) error {
	_ = sp.Close()
	return s.internalError(c, err)
}
