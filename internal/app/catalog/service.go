package catalog

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"toolcatalog/internal/domain"
	"toolcatalog/internal/infra/catalog/normalizer"
	"toolcatalog/internal/infra/catalog/query"
)

// ListOptions selects the visibility surface and the filters of a listing.
type ListOptions struct {
	Visibility domain.Visibility
	// Published narrows the admin surface to one published state. Ignored for
	// the public surface.
	Published *bool
	Filters   query.Filters
}

// Service composes the record store, the normalizer and the query engine.
// Reads never take the write lock; each mutation is a single store transaction.
type Service struct {
	store    domain.RecordStore
	logger   *zap.Logger
	validate *validator.Validate
}

func NewService(store domain.RecordStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		logger:   logger.Named("catalog_service"),
		validate: newValidator(),
	}
}

// Snapshot returns every normalized record in store order.
func (s *Service) Snapshot(ctx context.Context) []domain.Tool {
	return normalizer.NormalizeTools(s.store.ReadAll(ctx))
}

func (s *Service) List(ctx context.Context, opts ListOptions) ([]domain.Tool, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Wrap(domain.CodeCanceled, "catalog.list", err)
	}
	tools, err := visible(s.Snapshot(ctx), opts.Visibility, opts.Published)
	if err != nil {
		return nil, err
	}
	return query.Apply(tools, opts.Filters), nil
}

func (s *Service) Get(ctx context.Context, id int) (domain.Tool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Tool{}, domain.Wrap(domain.CodeCanceled, "catalog.get", err)
	}
	tool, ok := query.ByID(s.Snapshot(ctx), id)
	if !ok {
		return domain.Tool{}, notFound("catalog.get", id)
	}
	return tool, nil
}

// Compare validates the raw id list before reading the store, then returns the
// matching published tools in store order.
func (s *Service) Compare(ctx context.Context, rawIDs string) ([]domain.Tool, error) {
	ids, err := ParseCompareIDs(rawIDs)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.Wrap(domain.CodeCanceled, "catalog.compare", err)
	}
	return query.Compare(query.FilterPublished(s.Snapshot(ctx)), ids), nil
}

func (s *Service) Categories(ctx context.Context, visibility domain.Visibility) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Wrap(domain.CodeCanceled, "catalog.categories", err)
	}
	tools, err := visible(s.Snapshot(ctx), visibility, nil)
	if err != nil {
		return nil, err
	}
	return query.DistinctCategories(tools), nil
}

func (s *Service) Create(ctx context.Context, input ToolCreate) (domain.Tool, error) {
	if err := s.validate.Struct(input); err != nil {
		return domain.Tool{}, admissionError("catalog.create", err)
	}
	return s.Upsert(ctx, 0, input.Fields())
}

func (s *Service) Update(ctx context.Context, id int, input ToolUpdate) (domain.Tool, error) {
	if id <= 0 {
		return domain.Tool{}, notFound("catalog.update", id)
	}
	return s.Upsert(ctx, id, input.Fields())
}

// Upsert creates a tool when id is 0 and otherwise merges fields into the
// existing record. Field aliases are accepted. The persisted, normalized
// record is returned.
func (s *Service) Upsert(ctx context.Context, id int, fields domain.RawRecord) (domain.Tool, error) {
	op := "update"
	if id == 0 {
		op = "create"
	}
	supplied := normalizer.Canonicalize(fields)
	delete(supplied, domain.FieldID)

	var result domain.Tool
	err := s.store.Transact(domain.WithOperation(ctx, op), func(records []domain.RawRecord) ([]domain.Tool, error) {
		tools := normalizer.NormalizeTools(records)
		if id == 0 {
			supplied[domain.FieldID] = domain.NextToolID(tools)
			result = normalizer.NormalizeTool(supplied)
			return append(tools, result), nil
		}

		index := indexOf(tools, id)
		if index < 0 {
			return nil, notFound("catalog.update", id)
		}
		merged := normalizer.ToRaw(tools[index])
		for key, value := range supplied {
			merged[key] = value
		}
		merged[domain.FieldID] = id
		result = normalizer.NormalizeTool(merged)
		tools[index] = result
		return tools, nil
	})
	if err != nil {
		return domain.Tool{}, err
	}

	s.logger.Info("tool saved", zap.String("op", op), zap.Int("id", result.ID))
	return result, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	err := s.store.Transact(domain.WithOperation(ctx, "delete"), func(records []domain.RawRecord) ([]domain.Tool, error) {
		tools := normalizer.NormalizeTools(records)
		index := indexOf(tools, id)
		if index < 0 {
			return nil, notFound("catalog.delete", id)
		}
		return append(tools[:index], tools[index+1:]...), nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("tool deleted", zap.Int("id", id))
	return nil
}

// Import appends every record with a fresh id in one transaction.
func (s *Service) Import(ctx context.Context, records []domain.RawRecord) ([]domain.Tool, error) {
	if len(records) == 0 {
		return nil, domain.E(domain.CodeInvalidArgument, "catalog.import", "no records to import", domain.ErrInvalidRequest)
	}

	var created []domain.Tool
	err := s.store.Transact(domain.WithOperation(ctx, "import"), func(existing []domain.RawRecord) ([]domain.Tool, error) {
		tools := normalizer.NormalizeTools(existing)
		created = make([]domain.Tool, 0, len(records))
		for _, record := range records {
			fields := normalizer.Canonicalize(record)
			fields[domain.FieldID] = domain.NextToolID(tools)
			tool := normalizer.NormalizeTool(fields)
			tools = append(tools, tool)
			created = append(created, tool)
		}
		return tools, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tools imported", zap.Int("count", len(created)))
	return created, nil
}

func visible(tools []domain.Tool, visibility domain.Visibility, published *bool) ([]domain.Tool, error) {
	switch visibility {
	case domain.VisibilityPublic, "":
		return query.FilterPublished(tools), nil
	case domain.VisibilityAdmin:
		if published != nil {
			return query.FilterByPublished(tools, *published), nil
		}
		return tools, nil
	default:
		return nil, domain.E(domain.CodeInvalidArgument, "catalog.list",
			fmt.Sprintf("unknown visibility %q", visibility), domain.ErrInvalidRequest)
	}
}

func indexOf(tools []domain.Tool, id int) int {
	for i, tool := range tools {
		if tool.ID == id {
			return i
		}
	}
	return -1
}

func notFound(op string, id int) error {
	err := domain.E(domain.CodeNotFound, op, "Tool not found", domain.ErrToolNotFound)
	err.Meta = map[string]string{"id": fmt.Sprint(id)}
	return err
}
