package billingerrors

import (
	"net/http"

	"github.com/AdamWu1996/YCS/internal/shared/apperror"
)

var (
	ErrNoTaskSelected = apperror.New(
		apperror.CodeInvalidInput,
		"a task must be selected before claiming records",
		http.StatusBadRequest,
	)
	ErrEmptyRecordSet = apperror.New(
		apperror.CodeInvalidInput,
		"at least one time record is required",
		http.StatusBadRequest,
	)
	ErrInvalidRecordID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid time record id",
		http.StatusBadRequest,
	)
	ErrInvalidTaskID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid task id",
		http.StatusBadRequest,
	)
	ErrInvalidFinalMD = apperror.New(
		apperror.CodeInvalidInput,
		"final_md must be a positive value",
		http.StatusBadRequest,
	)
	ErrTaskNotFound = apperror.New(
		apperror.CodeNotFound,
		"task does not exist",
		http.StatusNotFound,
	)
	ErrTaskNotClaimable = apperror.New(
		apperror.CodeInvalidState,
		"task is not in an active state",
		http.StatusConflict,
	)
	ErrRecordNotFound = apperror.New(
		apperror.CodeNotFound,
		"one or more time records do not exist",
		http.StatusNotFound,
	)
	ErrClaimFailed = apperror.New(
		apperror.CodeTransactionError,
		"claim could not be completed, no changes were applied",
		http.StatusInternalServerError,
	)
)
