package service

import "revision-history-server/internal/domain"

// RevisionProjector shapes revisions for the presentation layer. The simple
// projection carries no payload and is meant for listings.
type RevisionProjector struct{}

func NewRevisionProjector() *RevisionProjector {
	return &RevisionProjector{}
}

func (p *RevisionProjector) ProjectSimple(r *domain.Revision) *domain.RevisionSimpleResponse {
	return &domain.RevisionSimpleResponse{
		UUID:         r.UUID,
		ItemUUID:     r.ItemUUID,
		ContentType:  r.ContentType,
		CreationDate: r.CreationDate,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func (p *RevisionProjector) ProjectFull(r *domain.Revision) *domain.RevisionFullResponse {
	return &domain.RevisionFullResponse{
		RevisionSimpleResponse: *p.ProjectSimple(r),
		Content:                r.Content,
		EncItemKey:             r.EncItemKey,
		AuthHash:               r.AuthHash,
		ItemsKeyID:             r.ItemsKeyID,
	}
}

func (p *RevisionProjector) ProjectSimpleList(revisions []*domain.Revision) []*domain.RevisionSimpleResponse {
	out := make([]*domain.RevisionSimpleResponse, 0, len(revisions))
	for _, r := range revisions {
		out = append(out, p.ProjectSimple(r))
	}
	return out
}
