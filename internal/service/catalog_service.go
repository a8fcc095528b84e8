package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fariyalkhan17/Quizzmaster/internal/cache"
	"github.com/fariyalkhan17/Quizzmaster/internal/domain"
	"github.com/fariyalkhan17/Quizzmaster/internal/dto"
	"github.com/fariyalkhan17/Quizzmaster/internal/logger"

	"go.uber.org/zap"
)

// CatalogService manages subjects and chapters and serves the public
// subject tree.
type CatalogService interface {
	CreateSubject(ctx context.Context, req dto.SubjectRequest) (*dto.SubjectResponse, error)
	UpdateSubject(ctx context.Context, id string, req dto.SubjectRequest) (*dto.SubjectResponse, error)
	DeleteSubject(ctx context.Context, id string) error

	CreateChapter(ctx context.Context, subjectID string, req dto.ChapterRequest) (*dto.ChapterResponse, error)
	UpdateChapter(ctx context.Context, id string, req dto.ChapterRequest) (*dto.ChapterResponse, error)
	DeleteChapter(ctx context.Context, id string) error

	// GetSubjectTree returns every live subject with its chapters, cached.
	GetSubjectTree(ctx context.Context) ([]dto.SubjectResponse, error)
	// GetSubject returns one live subject with its chapters.
	GetSubject(ctx context.Context, id string) (*dto.SubjectResponse, error)
}

type catalogServiceImpl struct {
	subjectRepo domain.SubjectRepository
	cache       domain.Cache
	treeTTL     time.Duration
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(subjectRepo domain.SubjectRepository, cacheClient domain.Cache, treeTTL time.Duration) CatalogService {
	return &catalogServiceImpl{
		subjectRepo: subjectRepo,
		cache:       cacheClient,
		treeTTL:     treeTTL,
	}
}

func subjectTreeCacheKey() string {
	return cache.GenerateCacheKey("catalog", "tree", "all")
}

func toSubjectResponse(s *domain.Subject) dto.SubjectResponse {
	resp := dto.SubjectResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
	}
	for _, ch := range s.Chapters {
		resp.Chapters = append(resp.Chapters, toChapterResponse(ch))
	}
	return resp
}

func toChapterResponse(ch *domain.Chapter) dto.ChapterResponse {
	return dto.ChapterResponse{
		ID:          ch.ID,
		SubjectID:   ch.SubjectID,
		Name:        ch.Name,
		Description: ch.Description,
	}
}

// invalidateTree drops the cached subject tree. Cache failures only degrade
// freshness, so they are logged and swallowed.
func (s *catalogServiceImpl) invalidateTree(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, subjectTreeCacheKey()); err != nil {
		logger.Get().Warn("Failed to invalidate subject tree cache", zap.Error(err))
	}
}

func (s *catalogServiceImpl) CreateSubject(ctx context.Context, req dto.SubjectRequest) (*dto.SubjectResponse, error) {
	subject := domain.NewSubject(req.Name, req.Description)
	if err := subject.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.subjectRepo.GetSubjectByName(ctx, req.Name)
	if err != nil {
		return nil, domain.NewInternalError("failed to check subject name", err)
	}
	if existing != nil {
		return nil, domain.NewConflictError("a subject with this name already exists")
	}

	if err := s.subjectRepo.CreateSubject(ctx, subject); err != nil {
		return nil, domain.NewInternalError("failed to create subject", err)
	}
	s.invalidateTree(ctx)

	resp := toSubjectResponse(subject)
	return &resp, nil
}

func (s *catalogServiceImpl) UpdateSubject(ctx context.Context, id string, req dto.SubjectRequest) (*dto.SubjectResponse, error) {
	subject, err := s.subjectRepo.GetSubjectByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("failed to get subject", err)
	}
	if subject == nil {
		return nil, domain.NewNotFoundError("subject not found")
	}

	subject.Name = req.Name
	subject.Description = req.Description
	if err := subject.Validate(); err != nil {
		return nil, err
	}
	if err := s.subjectRepo.UpdateSubject(ctx, subject); err != nil {
		return nil, domain.NewInternalError("failed to update subject", err)
	}
	s.invalidateTree(ctx)

	resp := toSubjectResponse(subject)
	return &resp, nil
}

func (s *catalogServiceImpl) DeleteSubject(ctx context.Context, id string) error {
	subject, err := s.subjectRepo.GetSubjectByID(ctx, id)
	if err != nil {
		return domain.NewInternalError("failed to get subject", err)
	}
	if subject == nil {
		return domain.NewNotFoundError("subject not found")
	}
	if err := s.subjectRepo.DeleteSubject(ctx, id); err != nil {
		return domain.NewInternalError("failed to delete subject", err)
	}
	s.invalidateTree(ctx)
	return nil
}

func (s *catalogServiceImpl) CreateChapter(ctx context.Context, subjectID string, req dto.ChapterRequest) (*dto.ChapterResponse, error) {
	subject, err := s.subjectRepo.GetSubjectByID(ctx, subjectID)
	if err != nil {
		return nil, domain.NewInternalError("failed to get subject", err)
	}
	if subject == nil {
		return nil, domain.NewNotFoundError("subject not found")
	}

	chapter := domain.NewChapter(subjectID, req.Name, req.Description)
	if err := chapter.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.subjectRepo.GetChapterByName(ctx, subjectID, req.Name)
	if err != nil {
		return nil, domain.NewInternalError("failed to check chapter name", err)
	}
	if existing != nil {
		return nil, domain.NewConflictError("a chapter with this name already exists in the subject")
	}

	if err := s.subjectRepo.CreateChapter(ctx, chapter); err != nil {
		return nil, domain.NewInternalError("failed to create chapter", err)
	}
	s.invalidateTree(ctx)

	resp := toChapterResponse(chapter)
	return &resp, nil
}

func (s *catalogServiceImpl) UpdateChapter(ctx context.Context, id string, req dto.ChapterRequest) (*dto.ChapterResponse, error) {
	chapter, err := s.subjectRepo.GetChapterByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("failed to get chapter", err)
	}
	if chapter == nil {
		return nil, domain.NewNotFoundError("chapter not found")
	}

	chapter.Name = req.Name
	chapter.Description = req.Description
	if err := chapter.Validate(); err != nil {
		return nil, err
	}
	if err := s.subjectRepo.UpdateChapter(ctx, chapter); err != nil {
		return nil, domain.NewInternalError("failed to update chapter", err)
	}
	s.invalidateTree(ctx)

	resp := toChapterResponse(chapter)
	return &resp, nil
}

func (s *catalogServiceImpl) DeleteChapter(ctx context.Context, id string) error {
	chapter, err := s.subjectRepo.GetChapterByID(ctx, id)
	if err != nil {
		return domain.NewInternalError("failed to get chapter", err)
	}
	if chapter == nil {
		return domain.NewNotFoundError("chapter not found")
	}
	if err := s.subjectRepo.DeleteChapter(ctx, id); err != nil {
		return domain.NewInternalError("failed to delete chapter", err)
	}
	s.invalidateTree(ctx)
	return nil
}

func (s *catalogServiceImpl) GetSubject(ctx context.Context, id string) (*dto.SubjectResponse, error) {
	subject, err := s.subjectRepo.GetSubjectByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("failed to get subject", err)
	}
	if subject == nil {
		return nil, domain.NewNotFoundError("subject not found")
	}

	chapters, err := s.subjectRepo.GetChaptersBySubject(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("failed to get chapters", err)
	}
	subject.Chapters = chapters

	resp := toSubjectResponse(subject)
	return &resp, nil
}

func (s *catalogServiceImpl) GetSubjectTree(ctx context.Context) ([]dto.SubjectResponse, error) {
	key := subjectTreeCacheKey()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err == nil {
			var tree []dto.SubjectResponse
			if err := json.Unmarshal([]byte(cached), &tree); err == nil {
				return tree, nil
			}
			logger.Get().Warn("Failed to decode cached subject tree, refetching", zap.Error(err))
		} else if err != domain.ErrCacheMiss {
			logger.Get().Warn("Subject tree cache read failed", zap.Error(err))
		}
	}

	subjects, err := s.subjectRepo.GetAllSubjectsWithChapters(ctx)
	if err != nil {
		return nil, domain.NewInternalError("failed to load subject tree", err)
	}

	tree := make([]dto.SubjectResponse, 0, len(subjects))
	for _, subject := range subjects {
		tree = append(tree, toSubjectResponse(subject))
	}

	if s.cache != nil {
		if payload, err := json.Marshal(tree); err == nil {
			if err := s.cache.Set(ctx, key, string(payload), s.treeTTL); err != nil {
				logger.Get().Warn("Subject tree cache write failed", zap.Error(err))
			}
		}
	}
	return tree, nil
}
