package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/Veraticus/finboard/internal/common"
	"github.com/Veraticus/finboard/internal/model"
)

// StatementMIMETypes are the statement formats the backend accepts.
var StatementMIMETypes = []string{
	"application/pdf",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// UnsupportedFileMessage is shown when a statement is not PDF, XLS or XLSX.
const UnsupportedFileMessage = "Only PDF, XLS, and XLSX files are supported."

// CheckStatementFile sniffs the file at path and rejects anything but PDF, XLS and XLSX.
func CheckStatementFile(path string) error {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if mimetype.EqualsAny(mtype.String(), StatementMIMETypes...) {
		return nil
	}
	// Legacy .xls files are sometimes only recognised as a generic OLE container.
	if mtype.Is("application/x-ole-storage") && strings.EqualFold(filepath.Ext(path), ".xls") {
		return nil
	}
	return common.NewUserError(UnsupportedFileMessage,
		fmt.Errorf("%w: %s is %s", common.ErrUnsupportedFile, filepath.Base(path), mtype.String()))
}

// UploadStatement ships a statement file for parsing. Bytes sent are mirrored
// to progress when it is non-nil.
func (c *Client) UploadStatement(ctx context.Context, upload model.StatementUpload, progress io.Writer) (model.Message, error) {
	var msg model.Message
	if err := CheckStatementFile(upload.Path); err != nil {
		return msg, err
	}

	f := newForm()
	f.field("user_email", upload.UserEmail)
	f.field("bank", upload.Bank)
	f.file("file", upload.Path)
	buf, contentType, err := f.finish()
	if err != nil {
		return msg, fmt.Errorf("upload transactions: %w", err)
	}

	var body io.Reader = buf
	if progress != nil {
		body = io.TeeReader(buf, progress)
	}

	err = c.do(ctx, request{
		op:          "upload transactions",
		method:      http.MethodPost,
		path:        "/upload-transactions/",
		body:        body,
		contentType: contentType,
	}, &msg)
	return msg, err
}
