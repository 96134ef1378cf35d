package core

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"focus-hub/pkg/rest"
)

type Options struct {
	DefaultTimezone string
	MaxPageSize     int
	// OwnerScopedDelete restricts deletes to the caller's own items.
	OwnerScopedDelete bool
	// RecheckOverlapOnUpdate runs the overlap check again when an update
	// moves an item.
	RecheckOverlapOnUpdate bool
	Now                    func() time.Time
}

type Service interface {
	Kind() Kind
	Create(ctx context.Context, owner string, draft Draft) (*ScheduledItem, error)
	List(ctx context.Context, owner string, req ListRequest) (*Listing, error)
	Get(ctx context.Context, owner string, id string) (*ScheduledItem, error)
	Update(ctx context.Context, owner string, id string, patch Patch) (*ScheduledItem, error)
	Delete(ctx context.Context, owner string, id string) error
}

type service struct {
	kind       Kind
	repository Repository
	options    Options
}

func NewService(kind Kind, repository Repository, options Options) Service {
	if options.Now == nil {
		options.Now = time.Now
	}

	return &service{kind: kind, repository: repository, options: options}
}

func (s *service) Kind() Kind {
	return s.kind
}

// Create validates ordering, then rejects overlaps with the owner's existing
// items, then stores the item. The check and the insert are not atomic.
func (s *service) Create(ctx context.Context, owner string, draft Draft) (*ScheduledItem, error) {
	item, err := draft.item()
	if err != nil {
		return nil, err
	}

	item.Owner = owner

	err = validateItem(item)
	if err != nil {
		return nil, err
	}

	overlaps, err := s.repository.Overlaps(ctx, owner, item.Interval(), "")
	if err != nil {
		return nil, err
	}

	if overlaps {
		return nil, rest.Conflict("it overlaps with another %s schedule", s.kind)
	}

	saved, err := s.repository.Insert(ctx, item)
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().Str("kind", s.kind.String()).Str("id", saved.Id).Msg("scheduled item created")

	return saved, nil
}

// List validates every parameter before touching the store, then runs the
// count and page passes concurrently at the same granularity.
func (s *service) List(ctx context.Context, owner string, req ListRequest) (*Listing, error) {
	params, err := parseListParams(req, s.options.DefaultTimezone, s.options.MaxPageSize)
	if err != nil {
		return nil, err
	}

	query := Query{
		Owner:    owner,
		Window:   Window{Mode: params.Mode, Now: s.options.Now()},
		View:     params.View,
		Location: params.Location,
		Offset:   params.Page.Offset(),
		Limit:    params.Page.Limit,
	}

	var (
		total int64
		items []ScheduledItem
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		total, err = s.repository.Count(groupCtx, query)

		return err
	})
	group.Go(func() error {
		var err error
		items, err = s.repository.FindPage(groupCtx, query)

		return err
	})

	err = group.Wait()
	if err != nil {
		return nil, err
	}

	listing := &Listing{
		View:       params.View.String(),
		Mode:       params.Mode.String(),
		Page:       params.Page.Number,
		Limit:      params.Page.Limit,
		TotalCount: total,
		TotalPages: params.Page.TotalPages(total),
	}

	switch params.View {
	case ViewGroup:
		listing.Items = FormatGroup(items, params.Mode, params.Location)
	case ViewFlat:
		listing.Items = FormatFlat(items, params.Mode)
	}

	return listing, nil
}

func (s *service) Get(ctx context.Context, owner string, id string) (*ScheduledItem, error) {
	err := validateId(id)
	if err != nil {
		return nil, err
	}

	item, err := s.repository.FindById(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if item == nil {
		return nil, rest.NotFound("%s %s not found", s.kind, id)
	}

	return item, nil
}

// Update applies the whitelisted fields of patch to the caller's item and
// re-validates the resulting range.
func (s *service) Update(ctx context.Context, owner string, id string, patch Patch) (*ScheduledItem, error) {
	item, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	err = patch.apply(item)
	if err != nil {
		return nil, err
	}

	err = validateItem(item)
	if err != nil {
		return nil, err
	}

	if s.options.RecheckOverlapOnUpdate {
		var overlaps bool

		overlaps, err = s.repository.Overlaps(ctx, owner, item.Interval(), item.Id)
		if err != nil {
			return nil, err
		}

		if overlaps {
			return nil, rest.Conflict("it overlaps with another %s schedule", s.kind)
		}
	}

	updated, err := s.repository.Update(ctx, item)
	if err != nil {
		return nil, err
	}

	if updated == nil {
		return nil, rest.NotFound("%s %s not found", s.kind, id)
	}

	return updated, nil
}

func (s *service) Delete(ctx context.Context, owner string, id string) error {
	err := validateId(id)
	if err != nil {
		return err
	}

	scope := owner
	if !s.options.OwnerScopedDelete {
		scope = ""
	}

	deleted, err := s.repository.Delete(ctx, scope, id)
	if err != nil {
		return err
	}

	if !deleted {
		return rest.NotFound("%s %s not found", s.kind, id)
	}

	log.Ctx(ctx).Info().Str("kind", s.kind.String()).Str("id", id).Bool("owner_scoped", scope != "").Msg("scheduled item deleted")

	return nil
}
