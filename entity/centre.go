package entity

// Centre is a service centre (Akshaya/CSC) capable of processing document
// applications, as returned by the directory gateway.
type Centre struct {
	CentreID   string `json:"centreId" bson:"centre_id"`
	CentreName string `json:"centreName" bson:"centre_name"`
	Contact    string `json:"contact" bson:"contact"`
	Address    string `json:"address" bson:"address"`
}

// DocumentType is one entry of the global document catalog.
type DocumentType struct {
	Key  string `json:"key" bson:"key"`
	Name string `json:"name" bson:"name"`
}
