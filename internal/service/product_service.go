package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"time"

	"github.com/haierkeys/fast-asset-delivery/internal/domain"
	"github.com/haierkeys/fast-asset-delivery/internal/dto"
	"github.com/haierkeys/fast-asset-delivery/pkg/fileurl"
	pkglogger "github.com/haierkeys/fast-asset-delivery/pkg/logger"
	"github.com/haierkeys/fast-asset-delivery/pkg/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultUploadMaxSize 500MB
const DefaultUploadMaxSize int64 = 500 << 20

// DefaultDeniedExts 默认禁止上传的可执行与脚本扩展名
var DefaultDeniedExts = []string{
	".exe", ".bat", ".cmd", ".com", ".msi", ".scr", ".ps1", ".vbs",
	".sh", ".php", ".phtml", ".jsp", ".asp", ".aspx", ".cgi", ".pl",
}

// ProductService 商品文件服务
type ProductService interface {
	// UploadFile stores the file of a product; only its creator may upload
	// UploadFile 上传商品文件，仅创作者可操作
	UploadFile(ctx context.Context, uid, productID int64, fileName string, size int64, content io.Reader) (*dto.ProductDTO, error)
}

type productService struct {
	productRepo domain.ProductRepository
	locator     storage.Locator
	logger      *zap.Logger
	config      UploadServiceConfig
	dbTimeout   time.Duration
}

// NewProductService 创建 ProductService 实例
func NewProductService(productRepo domain.ProductRepository, locator storage.Locator, logger *zap.Logger, config *ServiceConfig) ProductService {
	cfg := config.Upload
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultUploadMaxSize
	}
	if len(cfg.DeniedExts) == 0 {
		cfg.DeniedExts = DefaultDeniedExts
	}
	return &productService{
		productRepo: productRepo,
		locator:     locator,
		logger:      logger,
		config:      cfg,
		dbTimeout:   config.Delivery.withDefaults().DBTimeout,
	}
}

func (s *productService) domainToDTO(p *domain.Product) *dto.ProductDTO {
	return &dto.ProductDTO{
		ID:          p.ID,
		CreatorID:   p.CreatorID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		FileName:    p.FileName,
		FileSize:    p.FileSize,
		FileType:    p.FileType,
		HasFile:     p.HasFile(),
		UpdatedAt:   p.UpdatedAt,
	}
}

// UploadFile 上传商品文件
func (s *productService) UploadFile(ctx context.Context, uid, productID int64, fileName string, size int64, content io.Reader) (*dto.ProductDTO, error) {
	dbCtx, cancel := context.WithTimeout(ctx, s.dbTimeout)
	product, err := s.productRepo.GetByID(dbCtx, productID)
	cancel()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}

	if !product.IsOwnedBy(uid) {
		return nil, domain.ErrNotProductOwner
	}

	if !fileurl.IsSafeUploadName(fileName, s.config.DeniedExts) {
		return nil, domain.ErrUnsafeFileName
	}

	if size > s.config.MaxSize {
		return nil, domain.ErrFileTooLarge
	}

	// 实际读取量同样受限，防止声明大小与内容不符
	limited := &io.LimitedReader{R: content, N: s.config.MaxSize + 1}
	resourceID, err := s.locator.Store(ctx, limited, fileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	if limited.N <= 0 {
		// TODO: remove the orphaned object once Locator grows a Delete operation
		return nil, domain.ErrFileTooLarge
	}

	stored := s.config.MaxSize + 1 - limited.N
	fileType := mime.TypeByExtension(filepath.Ext(fileName))
	if fileType == "" {
		fileType = "application/octet-stream"
	}

	dbCtx, cancel = context.WithTimeout(ctx, s.dbTimeout)
	defer cancel()
	if err := s.productRepo.UpdateFile(dbCtx, product.ID, resourceID, fileName, fileType, stored); err != nil {
		return nil, err
	}

	s.logger.Info("product file uploaded",
		zap.Int64(pkglogger.FieldUID, uid),
		zap.Int64(pkglogger.FieldProductID, product.ID),
		zap.String(pkglogger.FieldResource, resourceID),
		zap.Int64(pkglogger.FieldSize, stored))

	product.ResourceID = resourceID
	product.FileName = fileName
	product.FileType = fileType
	product.FileSize = stored
	return s.domainToDTO(product), nil
}
