package gbfs

// Merge joins status records with their information records by station_id.
// Records present in only one of the two feeds are dropped. Output follows
// status order.
func Merge(info []InformationRecord, status []StatusRecord) []Station {
	byID := make(map[string]InformationRecord, len(info))
	for _, si := range info {
		byID[si.StationID] = si
	}

	merged := make([]Station, 0, len(status))
	for _, st := range status {
		si, ok := byID[st.StationID]
		if !ok {
			continue
		}
		merged = append(merged, Station{
			StationID:      st.StationID,
			Name:           si.Name,
			Lat:            si.Lat,
			Lon:            si.Lon,
			Capacity:       si.Capacity,
			BikesAvailable: st.NumBikesAvailable,
			DocksAvailable: st.NumDocksAvailable,
			IsInstalled:    st.IsInstalled,
			IsRenting:      st.IsRenting,
			IsReturning:    st.IsReturning,
			LastReported:   st.LastReported,
		})
	}
	return merged
}
