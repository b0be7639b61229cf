package api_router

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/haierkeys/fast-asset-delivery/internal/app"
	"github.com/haierkeys/fast-asset-delivery/internal/dto"
	pkgapp "github.com/haierkeys/fast-asset-delivery/pkg/app"
	"github.com/haierkeys/fast-asset-delivery/pkg/code"
	"github.com/haierkeys/fast-asset-delivery/pkg/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// multipartOverhead slack for multipart headers on top of the file size limit
const multipartOverhead = 1 << 20

// ProductHandler 商品文件处理器
type ProductHandler struct {
	*Handler
}

// NewProductHandler 创建 ProductHandler 实例
func NewProductHandler(a *app.App) *ProductHandler {
	return &ProductHandler{Handler: NewHandler(a)}
}

func productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// DownloadLink issues a time limited download link
// @Summary Issue download link
// @Description Return a signed /download link for an entitled caller
// @Tags Product
// @Security UserAuthToken
// @Param id path int true "Product ID"
// @Param params query dto.DownloadLinkRequest true "Query Parameters"
// @Produce json
// @Success 200 {object} pkgapp.Res{data=dto.DownloadLinkResponse} "Success"
// @Router /api/products/{id}/download-link [get]
func (h *ProductHandler) DownloadLink(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.DownloadLinkRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Debug("ProductHandler.DownloadLink.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.Clone().WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	id, ok := productID(c)
	if !ok {
		response.ToResponse(code.ErrorInvalidParams)
		return
	}

	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorInvalidUserAuthToken)
		return
	}

	var ttl time.Duration
	if params.TTL != "" {
		d, err := util.ParseDuration(params.TTL)
		if err != nil || d <= 0 {
			response.ToResponse(code.ErrorLinkTTLOutOfRange)
			return
		}
		ttl = d
	}

	link, err := h.App.DeliveryService.IssueLink(c.Request.Context(), uid, id, ttl)
	if err != nil {
		if isInternal(err) {
			h.logError(c.Request.Context(), "ProductHandler.DownloadLink", err)
		}
		h.errorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.Clone().WithData(link))
}

// UploadFile stores the deliverable of a product
// @Summary Upload product file
// @Description Creator only; replaces the current file of the product
// @Tags Product
// @Security UserAuthToken
// @Accept multipart/form-data
// @Param id path int true "Product ID"
// @Param file formData file true "File"
// @Produce json
// @Success 200 {object} pkgapp.Res{data=dto.ProductDTO} "Success"
// @Router /api/products/{id}/file [post]
func (h *ProductHandler) UploadFile(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	id, ok := productID(c)
	if !ok {
		response.ToResponse(code.ErrorInvalidParams)
		return
	}

	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorInvalidUserAuthToken)
		return
	}

	maxSize := h.App.Config().App.UploadMaxSize
	if maxSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize+multipartOverhead)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.ToResponse(code.ErrorFileTooLarge)
			return
		}
		response.ToResponse(code.ErrorInvalidParams.Clone().WithDetails("file is required"))
		return
	}
	defer file.Close()

	product, err := h.App.ProductService.UploadFile(c.Request.Context(), uid, id, header.Filename, header.Size, file)
	if err != nil {
		if isInternal(err) {
			h.logError(c.Request.Context(), "ProductHandler.UploadFile", err)
		}
		h.errorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.Clone().WithData(product))
}
