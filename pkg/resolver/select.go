package resolver

import (
	"github.com/BaeKey/smartedu/pkg/errors"
	"github.com/BaeKey/smartedu/pkg/model"
)

// Defaults for artifact selection.
const (
	DefaultFormat = "pdf"
	DefaultTitle  = "未命名课本"
)

// SelectArtifact returns the first item whose format equals format, provided
// it has a storage location. Collection order decides; a matching item without
// storage is ErrArtifactNotFound even if a later item would match.
func SelectArtifact(meta *model.Metadata, format, defaultTitle string) (model.ArtifactDescriptor, error) {
	if format == "" {
		format = DefaultFormat
	}
	if defaultTitle == "" {
		defaultTitle = DefaultTitle
	}
	if meta == nil {
		return model.ArtifactDescriptor{}, errors.Wrap(errors.ErrArtifactNotFound, "no metadata")
	}

	for _, item := range meta.Items {
		if item.Format != format {
			continue
		}
		if len(item.Storages) == 0 || item.Storages[0] == "" {
			return model.ArtifactDescriptor{}, errors.Wrapf(errors.ErrArtifactNotFound, "%s item has no storage location", format)
		}
		return model.ArtifactDescriptor{
			Title:  meta.TitleOr(defaultTitle),
			URL:    item.Storages[0],
			Format: format,
		}, nil
	}
	return model.ArtifactDescriptor{}, errors.Wrapf(errors.ErrArtifactNotFound, "no %s item among %d", format, len(meta.Items))
}
