package appconfig

import (
	"github.com/SaiNageswarS/go-api-boot/config"
)

type AppConfig struct {
	config.BootConfig `ini:",extends"`

	MongoURI         string `env:"MONGO-URI" ini:"mongo_uri"`
	TemporalHostPort string `env:"TEMPORAL-HOST-PORT" ini:"temporal_host_port"`

	// Tenant whose Mongo database and blob container hold document state.
	Tenant string `env:"TENANT" ini:"tenant"`

	// RestPort is the listen address of the document/query REST API.
	RestPort string `env:"REST-PORT" ini:"rest_port"`

	// OCR settings. OcrEngines is the comma-separated engine set a run uses
	// when the trigger request does not pick its own.
	OcrEngines        string `ini:"ocr_engines"`
	TesseractLanguage string `ini:"tesseract_language"`

	// Retrieval settings.
	ChunkSize     int    `ini:"chunk_size"`
	ChunkOverlap  int    `ini:"chunk_overlap"`
	RetrievalTopK int    `ini:"retrieval_top_k"`
	AnswerModel   string `ini:"answer_model"`
}
