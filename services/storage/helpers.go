package storage

import (
	"github.com/customeros/mailvault/interfaces"
	"github.com/customeros/mailvault/services/storage/aws_client"
)

// NewR2StorageService creates a StorageService configured for Cloudflare R2
func NewR2StorageService(accountID, accessKeyID, accessKeySecret, bucketName string, isPublic bool) interfaces.StorageService {
	r2Client := aws_client.NewR2Client(aws_client.R2Config{
		AccountID:       accountID,
		AccessKeyID:     accessKeyID,
		AccessKeySecret: accessKeySecret,
	})

	return NewStorageService(r2Client, StorageConfig{
		BucketName: bucketName,
		IsPublic:   isPublic,
	})
}
