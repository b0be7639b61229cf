package api_router

import (
	"io"
	"mime"
	"net/http"

	"github.com/haierkeys/fast-asset-delivery/internal/app"
	"github.com/haierkeys/fast-asset-delivery/internal/dto"
	"github.com/haierkeys/fast-asset-delivery/internal/middleware"
	"github.com/haierkeys/fast-asset-delivery/internal/service"
	pkgapp "github.com/haierkeys/fast-asset-delivery/pkg/app"
	"github.com/haierkeys/fast-asset-delivery/pkg/storage/blob"

	"github.com/gin-gonic/gin"
)

// DeliveryHandler 受控下载处理器
type DeliveryHandler struct {
	*Handler
}

// NewDeliveryHandler 创建 DeliveryHandler 实例
func NewDeliveryHandler(a *app.App) *DeliveryHandler {
	return &DeliveryHandler{Handler: NewHandler(a)}
}

// Download serves a resource behind a link token
// @Summary Download a purchased file
// @Description Verify link token, credential and entitlement, then stream or redirect
// @Tags Delivery
// @Param resource path string true "Resource ID"
// @Param token query string true "Link token"
// @Param expires query string true "Link expiry (unix seconds)"
// @Success 200 {file} binary "Stream"
// @Success 302 "Redirect to storage"
// @Router /download/{resource} [get]
func (h *DeliveryHandler) Download(c *gin.Context) {
	params := &dto.DownloadRequest{}
	if valid, _ := pkgapp.BindAndValid(c, params); !valid {
		// 畸形令牌按无效令牌处理
		params.Token, params.Expires = "", ""
	}

	h.serve(c, &service.DeliveryRequest{
		Flow:       service.FlowToken,
		ResourceID: c.Param("resource"),
		Credential: middleware.BearerCredential(c),
		Token:      params.Token,
		Expires:    params.Expires,
		ClientIP:   pkgapp.GetRequestIP(c),
	})
}

// Access serves a resource to an entitled caller without a link token
// @Summary Access a purchased file
// @Description Authenticated access answered with a short lived storage URL
// @Tags Delivery
// @Param resource query string true "Resource ID"
// @Param auth query string false "Bearer credential when no Authorization header is sent"
// @Success 302 "Redirect to storage"
// @Router /access [get]
func (h *DeliveryHandler) Access(c *gin.Context) {
	params := &dto.AccessRequest{}
	if valid, _ := pkgapp.BindAndValid(c, params); !valid {
		params.Resource = ""
	}

	h.serve(c, &service.DeliveryRequest{
		Flow:       service.FlowAccess,
		ResourceID: params.Resource,
		Credential: middleware.BearerCredential(c),
		ClientIP:   pkgapp.GetRequestIP(c),
	})
}

func (h *DeliveryHandler) serve(c *gin.Context, req *service.DeliveryRequest) {
	plan, err := h.App.DeliveryService.Prepare(c.Request.Context(), req)
	if err != nil {
		if isInternal(err) {
			h.logError(c.Request.Context(), "DeliveryHandler.serve", err)
		}
		h.errorResponse(c, err)
		return
	}

	if plan.Object == nil {
		c.Redirect(http.StatusFound, plan.RedirectURL)
		return
	}

	writeObject(c, plan.Object)
}

// writeObject streams obj as an attachment. Seekable bodies go through
// http.ServeContent so range requests and conditional headers work.
// writeObject 以附件形式输出文件
func writeObject(c *gin.Context, obj *blob.Object) {
	defer obj.Body.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": obj.Name}))

	if rs, ok := seekable(obj.Body); ok {
		http.ServeContent(c.Writer, c.Request, "", obj.ModTime, rs)
		return
	}

	c.DataFromReader(http.StatusOK, obj.Size, contentType, obj.Body, nil)
}

func seekable(body io.Reader) (io.ReadSeeker, bool) {
	rs, ok := body.(io.ReadSeeker)
	if !ok {
		return nil, false
	}
	if s, ok := body.(interface{ Seekable() bool }); ok && !s.Seekable() {
		return nil, false
	}
	return rs, true
}
