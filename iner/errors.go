package iner

import "github.com/indexkit/iner/internal/rkind"

// Kind and ResolutionError are type aliases onto internal/rkind so
// every resolver stage can construct a precise error without this
// package's facade importing them (which would cycle).
type Kind = rkind.Kind

type ResolutionError = rkind.Error

const (
	KindIndexNotFound                = rkind.IndexNotFound
	KindAliasNotAllowed              = rkind.AliasNotAllowed
	KindMultipleIndicesForbidden     = rkind.MultipleIndicesForbidden
	KindNoWriteIndex                 = rkind.NoWriteIndex
	KindIndexClosed                  = rkind.IndexClosed
	KindInvalidExpression            = rkind.InvalidExpression
	KindCrossClusterUnsupported      = rkind.CrossClusterUnsupported
	KindSystemDataStreamAccessDenied = rkind.SystemDataStreamAccessDenied
	KindSystemNetNewAccessDenied     = rkind.SystemNetNewAccessDenied
	KindInvalidState                 = rkind.InvalidState
)
