package importapp

import (
	"context"
	"errors"
	"fmt"

	"github.com/balcao/backend/internal/domain/partner"
	"github.com/balcao/backend/internal/domain/shared"
	"github.com/balcao/backend/internal/infrastructure/cache"
	"github.com/balcao/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClientResolution maps each distinct client name of a run to a registry ID
type ClientResolution struct {
	IDs map[string]uuid.UUID
	// Created lists the names inserted during this run, in input order.
	Created []string
	// WouldCreate lists the names a dry run left unresolved.
	WouldCreate []string
	Failed      map[string]error
}

func newClientResolution() *ClientResolution {
	return &ClientResolution{
		IDs:    make(map[string]uuid.UUID),
		Failed: make(map[string]error),
	}
}

// ID returns the resolved ID for name
func (r *ClientResolution) ID(name string) (uuid.UUID, bool) {
	id, ok := r.IDs[name]
	return id, ok
}

// ClientResolver finds or creates clients by exact name.
// Known names are served from a cache shared across runs; the rest are
// looked up in one query and the still-missing ones inserted in one batch.
type ClientResolver struct {
	repo     partner.ClientRepository
	cache    *cache.ClientIDCache
	location string
	logger   *zap.Logger
}

// NewClientResolver creates a ClientResolver. Clients it creates get location.
func NewClientResolver(repo partner.ClientRepository, idCache *cache.ClientIDCache, location string, logger *zap.Logger) *ClientResolver {
	if location == "" {
		location = partner.DefaultImportLocation
	}
	return &ClientResolver{
		repo:     repo,
		cache:    idCache,
		location: location,
		logger:   logger,
	}
}

// Resolve maps names to IDs. In a dry run nothing is written and names
// absent from the registry end up in WouldCreate. Lookup and insert failures
// are reported per name in Failed; only context cancellation is returned.
func (r *ClientResolver) Resolve(ctx context.Context, names []string, dryRun bool) (*ClientResolution, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sales_import", "resolve_clients",
		telemetry.WithAttribute(telemetry.SpanAttrClients, len(names)),
	)
	defer span.End()

	res := newClientResolution()
	cached, missing := r.cache.Lookup(names)
	for name, id := range cached {
		res.IDs[name] = id
	}
	if len(missing) == 0 {
		return res, nil
	}

	found, err := r.repo.FindByNames(ctx, missing)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.logger.Warn("Batched client lookup failed, resolving one by one", zap.Error(err))
		telemetry.AddEvent(span, "batch_lookup_failed")
		for _, name := range missing {
			if err := r.resolveOne(ctx, name, dryRun, res); err != nil {
				return nil, err
			}
		}
		telemetry.SetAttributes(span, telemetry.SpanAttrCreated, len(res.Created), telemetry.SpanAttrFailed, len(res.Failed))
		return res, nil
	}

	for _, c := range found {
		r.remember(res, c.Name, c.ID)
	}

	var absent []string
	for _, name := range missing {
		if _, ok := res.IDs[name]; !ok {
			absent = append(absent, name)
		}
	}
	if len(absent) == 0 {
		return res, nil
	}
	if dryRun {
		res.WouldCreate = absent
		return res, nil
	}

	clients := make([]*partner.Client, 0, len(absent))
	for _, name := range absent {
		client, err := partner.NewClient(name, r.location)
		if err != nil {
			res.Failed[name] = err
			continue
		}
		clients = append(clients, client)
	}

	if len(clients) > 0 {
		if err := r.repo.CreateBatch(ctx, clients); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.logger.Warn("Batched client insert failed, creating one by one",
				zap.Int("clients", len(clients)),
				zap.Error(err),
			)
			telemetry.AddEvent(span, "batch_insert_failed")
			for _, c := range clients {
				if err := r.resolveOne(ctx, c.Name, false, res); err != nil {
					return nil, err
				}
			}
		} else {
			for _, c := range clients {
				r.remember(res, c.Name, c.ID)
				res.Created = append(res.Created, c.Name)
				r.logger.Info("Client created", zap.String("client", c.Name))
			}
		}
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrCreated, len(res.Created), telemetry.SpanAttrFailed, len(res.Failed))
	return res, nil
}

// resolveOne is the per-name fallback: find, else create, else find again in
// case another writer inserted the name in between.
func (r *ClientResolver) resolveOne(ctx context.Context, name string, dryRun bool, res *ClientResolution) error {
	client, err := r.repo.FindByName(ctx, name)
	if err == nil {
		r.remember(res, client.Name, client.ID)
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if !errors.Is(err, shared.ErrNotFound) {
		res.Failed[name] = fmt.Errorf("lookup: %w", err)
		return nil
	}
	if dryRun {
		res.WouldCreate = append(res.WouldCreate, name)
		return nil
	}

	client, err = partner.NewClient(name, r.location)
	if err != nil {
		res.Failed[name] = err
		return nil
	}
	if err := r.repo.Create(ctx, client); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, shared.ErrAlreadyExists) {
			if existing, findErr := r.repo.FindByName(ctx, name); findErr == nil {
				r.remember(res, existing.Name, existing.ID)
				return nil
			}
		}
		r.logger.Error("Failed to create client", zap.String("client", name), zap.Error(err))
		res.Failed[name] = fmt.Errorf("create: %w", err)
		return nil
	}

	r.remember(res, client.Name, client.ID)
	res.Created = append(res.Created, name)
	r.logger.Info("Client created", zap.String("client", name))
	return nil
}

func (r *ClientResolver) remember(res *ClientResolution, name string, id uuid.UUID) {
	res.IDs[name] = id
	r.cache.Set(name, id)
}
