package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxUploadSize is the largest image or document accepted
const MaxUploadSize = 5 << 20

var allowedImageTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp", "image/gif"}

// Upload is a file received from a client
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Object is what gets written to the object store
type Object struct {
	Bucket  string
	Name    string
	Body    io.Reader
	Private bool
}

// StoredObject locates a written object. Path is the store-relative key.
type StoredObject struct {
	Path string
	URL  string
}

// ObjectStore is a bucketed blob store with public and private objects
type ObjectStore interface {
	Put(ctx context.Context, obj Object) (StoredObject, error)
	URL(objectPath string, private bool) (string, error)
	Delete(ctx context.Context, objectPath string, private bool) error
}

// StorageService validates uploads and writes them to the image or document bucket
type StorageService struct {
	store          ObjectStore
	imageBucket    string
	documentBucket string
}

// NewStorageService creates a StorageService. A nil store disables uploads.
func NewStorageService(store ObjectStore, imageBucket, documentBucket string) *StorageService {
	if store == nil {
		store = disabledStore{}
	}
	return &StorageService{store: store, imageBucket: imageBucket, documentBucket: documentBucket}
}

type disabledStore struct{}

func (disabledStore) Put(context.Context, Object) (StoredObject, error) {
	return StoredObject{}, ErrStorageDisabled
}

func (disabledStore) URL(string, bool) (string, error) {
	return "", ErrStorageDisabled
}

func (disabledStore) Delete(context.Context, string, bool) error {
	return ErrStorageDisabled
}

// ValidateImage checks the declared size and content type. It never touches the network.
func (s *StorageService) ValidateImage(contentType string, size int64) error {
	if size > MaxUploadSize {
		return ErrFileTooLarge
	}
	if size <= 0 {
		return &ValidationError{Err: errors.New("file is empty")}
	}
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if !mimetype.EqualsAny(ct, allowedImageTypes...) {
		return ErrUnsupportedFileType
	}
	return nil
}

// sniff checks the leading bytes match an allowed image type and returns a reader
// that still yields the whole file
func sniff(body io.Reader) (io.Reader, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	head = head[:n]
	detected := mimetype.Detect(head)
	if !mimetype.EqualsAny(detected.String(), allowedImageTypes...) {
		return nil, ErrUnsupportedFileType
	}
	return io.MultiReader(bytes.NewReader(head), body), nil
}

func (s *StorageService) put(ctx context.Context, bucket, folder string, f Upload, private bool) (StoredObject, error) {
	if err := s.ValidateImage(f.ContentType, f.Size); err != nil {
		return StoredObject{}, err
	}
	body, err := sniff(f.Body)
	if err != nil {
		return StoredObject{}, err
	}
	obj, err := s.store.Put(ctx, Object{
		Bucket:  bucket,
		Name:    path.Join(folder, uuid.NewString()),
		Body:    body,
		Private: private,
	})
	if err != nil {
		return StoredObject{}, fmt.Errorf("failed to store %s: %w", f.Filename, err)
	}
	return obj, nil
}

// UploadImage stores a public motorcycle image
func (s *StorageService) UploadImage(ctx context.Context, f Upload) (StoredObject, error) {
	return s.put(ctx, s.imageBucket, "", f, false)
}

// UploadDocument stores a private identity document under the owner's folder
func (s *StorageService) UploadDocument(ctx context.Context, userID string, f Upload) (StoredObject, error) {
	return s.put(ctx, s.documentBucket, userID, f, true)
}

// SignedURL returns a signed delivery URL for a private object
func (s *StorageService) SignedURL(objectPath string) (string, error) {
	return s.store.URL(objectPath, true)
}

// PublicURL returns the delivery URL of a public object
func (s *StorageService) PublicURL(objectPath string) (string, error) {
	return s.store.URL(objectPath, false)
}

// Delete removes an object
func (s *StorageService) Delete(ctx context.Context, objectPath string, private bool) error {
	return s.store.Delete(ctx, objectPath, private)
}

// CloudinaryStore keeps buckets as Cloudinary folders. Private objects use the
// authenticated delivery type and are only reachable through signed URLs.
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStore creates a CloudinaryStore from a cloudinary:// URL
func NewCloudinaryStore(cloudinaryURL string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, err
	}
	cld.Config.URL.Secure = true
	return &CloudinaryStore{cld: cld}, nil
}

// Put uploads obj under bucket/name
func (c *CloudinaryStore) Put(ctx context.Context, obj Object) (StoredObject, error) {
	params := uploader.UploadParams{
		PublicID: obj.Name,
		Folder:   obj.Bucket,
	}
	if obj.Private {
		params.Type = "authenticated"
	}
	res, err := c.cld.Upload.Upload(ctx, obj.Body, params)
	if err != nil {
		return StoredObject{}, err
	}
	if res.Error.Message != "" {
		return StoredObject{}, errors.New(res.Error.Message)
	}
	return StoredObject{Path: res.PublicID, URL: res.SecureURL}, nil
}

// URL builds a delivery URL, signed for private objects
func (c *CloudinaryStore) URL(objectPath string, private bool) (string, error) {
	img, err := c.cld.Image(objectPath)
	if err != nil {
		return "", err
	}
	if private {
		img.DeliveryType = "authenticated"
		img.Config.URL.SignURL = true
	}
	return img.String()
}

// Delete destroys the object
func (c *CloudinaryStore) Delete(ctx context.Context, objectPath string, private bool) error {
	params := uploader.DestroyParams{PublicID: objectPath}
	if private {
		params.Type = "authenticated"
	}
	res, err := c.cld.Upload.Destroy(ctx, params)
	if err != nil {
		return err
	}
	if res.Error.Message != "" {
		return errors.New(res.Error.Message)
	}
	return nil
}
