package repository

import (
	"github.com/mwantia/olog/pkg/db/store"
	"github.com/mwantia/olog/pkg/entity"
	"github.com/mwantia/olog/pkg/log"
)

type (
	LogbookRepository  = Repository[entity.Logbook]
	TagRepository      = Repository[entity.Tag]
	PropertyRepository = Repository[entity.Property]
)

func NewLogbookRepository(s store.DocumentStore, collection string, opts Options, logger log.LoggerService) *LogbookRepository {
	return New(s, LogbookMapping(collection), opts, logger)
}

func NewTagRepository(s store.DocumentStore, collection string, opts Options, logger log.LoggerService) *TagRepository {
	return New(s, TagMapping(collection), opts, logger)
}

func NewPropertyRepository(s store.DocumentStore, collection string, opts Options, logger log.LoggerService) *PropertyRepository {
	return New(s, PropertyMapping(collection), opts, logger)
}
