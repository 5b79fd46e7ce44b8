package failure

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind error
		notKind  error
	}{
		{
			name:     "validation",
			err:      Validationf("file must have .mk extension: %s", "x.txt"),
			wantKind: ErrValidation,
			notKind:  ErrIO,
		},
		{
			name:     "io",
			err:      IO("open", "x.mk", os.ErrNotExist),
			wantKind: ErrIO,
			notKind:  ErrStage,
		},
		{
			name:     "stage",
			err:      StageFailed(StageLink, "gcc a.o -o a", "", errors.New("exit status 1")),
			wantKind: ErrStage,
			notKind:  ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.wantKind)
			assert.NotErrorIs(t, tt.err, tt.notKind)
		})
	}
}

func TestIOKeepsCause(t *testing.T) {
	err := IO("open", "x.mk", os.ErrNotExist)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, "i/o error: open x.mk: file does not exist", err.Error())
}

func TestStageOf(t *testing.T) {
	err := fmt.Errorf("build: %w", StageFailed(StageSupportCompile, "gcc -c lib.c", "boom", nil))

	assert.Equal(t, StageSupportCompile, StageOf(err))
	assert.Equal(t, "boom", OutputOf(err))
	assert.Equal(t, Stage(""), StageOf(Validationf("nope")))
	assert.Equal(t, Stage(""), StageOf(errors.New("plain")))
}

func TestErrorString(t *testing.T) {
	err := StageFailed(StageCompile, "gcc -c a.c -o a.o", "", errors.New("exit status 1"))
	require.EqualError(t, err, "stage failure (compile): gcc -c a.c -o a.o: exit status 1")
}
