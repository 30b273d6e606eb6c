package aliyun

import (
	"context"

	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss"
	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss/credentials"
	"go.uber.org/zap"

	"soundbed/log"
)

type OssClient struct {
	*oss.Client
	Bucket string
}

func NewOssClient(accessKeyId, accessKeySecret, bucket, region string) *OssClient {
	cfg := oss.LoadDefaultConfig().
		WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyId, accessKeySecret)).
		WithRegion(region)
	return &OssClient{oss.NewClient(cfg), bucket}
}

type OssObject struct {
	Key  string
	Size int64
}

// ListPrefix returns every object under the given key prefix.
func (o *OssClient) ListPrefix(ctx context.Context, prefix string) ([]OssObject, error) {
	paginator := o.NewListObjectsV2Paginator(&oss.ListObjectsV2Request{
		Bucket: oss.Ptr(o.Bucket),
		Prefix: oss.Ptr(prefix),
	})

	var objects []OssObject
	for paginator.HasNext() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			objects = append(objects, OssObject{Key: *obj.Key, Size: obj.Size})
		}
	}
	return objects, nil
}

// DownloadFile fetches an object to a local path.
func (o *OssClient) DownloadFile(ctx context.Context, objectKey, filePath string) error {
	_, err := o.GetObjectToFile(ctx, &oss.GetObjectRequest{
		Bucket: oss.Ptr(o.Bucket),
		Key:    oss.Ptr(objectKey),
	}, filePath)
	if err != nil {
		log.GetLogger().Error("oss download failed", zap.String("key", objectKey), zap.Error(err))
		return err
	}
	return nil
}

// UploadFile stores a local file under the given object key.
func (o *OssClient) UploadFile(ctx context.Context, objectKey, filePath string) error {
	_, err := o.PutObjectFromFile(ctx, &oss.PutObjectRequest{
		Bucket: oss.Ptr(o.Bucket),
		Key:    oss.Ptr(objectKey),
	}, filePath)
	if err != nil {
		log.GetLogger().Error("oss upload failed", zap.String("key", objectKey), zap.Error(err))
		return err
	}
	return nil
}
